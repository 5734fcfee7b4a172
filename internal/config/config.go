/*
 * config.go, part of gocrest.
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

// Package config loads the settings of gocrest from a YAML file and
// GOCREST_* environment variables, applying defaults and validating the result.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rmera/gocrest/csearch"
	"github.com/rmera/gocrest/internal/logging"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
// Nested keys use "_", so log.level is GOCREST_LOG_LEVEL.
const envPrefix = "GOCREST"

// Config holds all the settings of a run.
type Config struct {
	Workers        int                `mapstructure:"workers" validate:"min=1"`
	NProcs         int                `mapstructure:"nprocs" validate:"min=1"`
	Complex        string             `mapstructure:"complex" validate:"oneof=on off auto"`
	ForceConstant  float64            `mapstructure:"force_constant" validate:"gt=0"`
	CrestKeywords  string             `mapstructure:"crest_keywords"`
	Cregen         bool               `mapstructure:"cregen"`
	CregenKeywords string             `mapstructure:"cregen_keywords"`
	CrestCommand   string             `mapstructure:"crest_command" validate:"required"`
	XTBCommand     string             `mapstructure:"xtb_command" validate:"required"`
	OutputDir      string             `mapstructure:"output_dir" validate:"required"`
	DBPath         string             `mapstructure:"db_path"`
	MetricsFile    string             `mapstructure:"metrics_file"`
	GeomRules      []csearch.GeomRule `mapstructure:"geom_rules" validate:"dive"`
	Log            logging.Config     `mapstructure:"log"`
}

// Defaults for the settings not given.
const (
	DefaultWorkers      = 4
	DefaultNProcs       = 2
	DefaultComplex      = "auto"
	DefaultCrestCommand = "crest"
	DefaultXTBCommand   = "xtb"
	DefaultOutputDir    = "."
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// New returns a viper instance with the defaults of every key, reading
// GOCREST_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("nprocs", DefaultNProcs)
	v.SetDefault("complex", DefaultComplex)
	v.SetDefault("force_constant", csearch.DefaultForceConstant)
	v.SetDefault("crest_keywords", "")
	v.SetDefault("cregen", false)
	v.SetDefault("cregen_keywords", "")
	v.SetDefault("crest_command", DefaultCrestCommand)
	v.SetDefault("xtb_command", DefaultXTBCommand)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("db_path", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	return v
}

// Load reads the YAML file configPath, if not empty, into v, and returns the
// validated configuration. Environment variables and values set in v
// (i.e. from command-line flags) take precedence over the file.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	cfg.Complex = strings.ToLower(cfg.Complex)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Options returns the options for the jobs of a run.
func (c *Config) Options() csearch.Options {
	return csearch.Options{
		OutputDir:     c.OutputDir,
		Complex:       csearch.ComplexMode(c.Complex),
		ForceConstant: c.ForceConstant,
		Cregen:        c.Cregen,
		Rules:         c.GeomRules,
	}
}
