/*
GoPowers - A rule-based style analyzer for Go source code
Copyright (C) 2026  James Ainslie

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package options

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/jamesainslie/go-powers/rulesets"
)

// CheckConfig is the per-project configuration file. All fields are
// optional; absent keys keep their defaults, unknown keys are
// rejected so typos do not silently disable anything.
type CheckConfig struct {
	Limits            *rulesets.Limits `yaml:"limits"`
	Categories        []string         `yaml:"categories"`
	DisabledRules     []string         `yaml:"disabled_rules"`
	WarningsAsErrors  bool             `yaml:"warnings_as_errors"`
	GeneratedSuffixes []string         `yaml:"generated_suffixes"`
	MaxReportsPerRule int              `yaml:"max_reports_per_rule"`
	RuleMaxReports    map[string]int   `yaml:"rule_max_reports"`
}

func DefaultCheckConfig() *CheckConfig {
	return &CheckConfig{
		Limits: rulesets.DefaultLimits(),
	}
}

func LoadCheckConfig(path string) (*CheckConfig, error) {
	cfg := DefaultCheckConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	if err := validateLimits(cfg.Limits); err != nil {
		return nil, fmt.Errorf("invalid limits in %s: %v", path, err)
	}
	if cfg.MaxReportsPerRule < 0 {
		return nil, fmt.Errorf("invalid max_reports_per_rule %d in %s", cfg.MaxReportsPerRule, path)
	}
	return cfg, nil
}

func validateLimits(limits *rulesets.Limits) error {
	if limits.MaxInterfaceMethods < 1 {
		return fmt.Errorf("max_interface_methods must be at least 1, got %d", limits.MaxInterfaceMethods)
	}
	if limits.ErrorInterfaceMethods < limits.MaxInterfaceMethods {
		return fmt.Errorf("error_interface_methods %d must not be below max_interface_methods %d",
			limits.ErrorInterfaceMethods, limits.MaxInterfaceMethods)
	}
	if limits.MaxFuncLines < 1 {
		return fmt.Errorf("max_func_lines must be at least 1, got %d", limits.MaxFuncLines)
	}
	if limits.MaxFileLines < 1 {
		return fmt.Errorf("max_file_lines must be at least 1, got %d", limits.MaxFileLines)
	}
	if limits.MaxNesting < 1 {
		return fmt.Errorf("max_nesting must be at least 1, got %d", limits.MaxNesting)
	}
	if limits.MaxChanBuffer < 0 {
		return fmt.Errorf("max_chan_buffer must not be negative, got %d", limits.MaxChanBuffer)
	}
	return nil
}
