/*
 * logging_test.go, part of gocrest.
 *
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(Te *testing.T) {
	assert.Equal(Te, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(Te, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(Te, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(Te, zapcore.InfoLevel, ParseLevel("whatever"))
}

func TestNewJSON(Te *testing.T) {
	out := filepath.Join(Te.TempDir(), "gocrest.log")
	l, err := New(Config{Level: "warn", Format: "json", OutputPaths: []string{out}})
	require.NoError(Te, err)
	l.Info("not written")
	l.Warn("conformer search failed", zap.String("molecule", "A"))
	require.NoError(Te, l.Sync())
	data, err := os.ReadFile(out)
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(Te, lines, 1)
	entry := make(map[string]any)
	require.NoError(Te, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(Te, "A", entry["molecule"])
	assert.Equal(Te, "warn", entry["level"])
	assert.Contains(Te, entry, "ts")
}

func TestNewBadPath(Te *testing.T) {
	_, err := New(Config{OutputPaths: []string{filepath.Join(Te.TempDir(), "no", "such", "dir", "x.log")}})
	assert.Error(Te, err)
}
