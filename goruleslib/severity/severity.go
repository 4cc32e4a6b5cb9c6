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

package severity

import (
	"fmt"
)

// Severity is the reporting level of a finding.
type Severity int

const (
	Unknown Severity = iota
	Error
	Warning
	Info
)

var valueMap = map[Severity]string{
	Error:   "error",
	Warning: "warning",
	Info:    "info",
}

func (s Severity) String() string {
	v, ok := valueMap[s]
	if !ok {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return v
}

func Parse(text string) (Severity, error) {
	for k, v := range valueMap {
		if v == text {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown severity %q", text)
}

// UnmarshalText for setting values with configs, CLI, etc.
func (s *Severity) UnmarshalText(rawtext []byte) error {
	parsed, err := Parse(string(rawtext))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalText() ([]byte, error) {
	v, ok := valueMap[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal severity %d", int(s))
	}
	return []byte(v), nil
}

// Blocking reports whether a finding at this severity fails the run.
func (s Severity) Blocking(warningsAsErrors bool) bool {
	return s == Error || (warningsAsErrors && s == Warning)
}
