/*
 * container.go, part of gocrest.
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

package csearch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// WriteContainer writes records to the file name, as zstd-compressed JSON lines,
// one record per line. The file is overwritten if it exists.
func WriteContainer(name string, records []*ConformerRecord) error {
	errid := "WriteContainer"
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	enc := json.NewEncoder(zw)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			zw.Close()
			return fmt.Errorf("%s: %s %d: %w", errid, r.Molecule, r.Index, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return f.Close()
}

// ReadContainer reads all the records in a file written by WriteContainer.
func ReadContainer(name string) ([]*ConformerRecord, error) {
	errid := "ReadContainer"
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	defer zr.Close()
	dec := json.NewDecoder(bufio.NewReader(zr))
	var ret []*ConformerRecord
	for {
		r := new(ConformerRecord)
		err := dec.Decode(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", errid, len(ret)+1, err)
		}
		ret = append(ret, r)
	}
	return ret, nil
}
