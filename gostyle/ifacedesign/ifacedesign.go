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

// Package ifacedesign holds the rules about interface size, placement
// and naming.
package ifacedesign

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		ifaceSize(),
		ifaceReturn(),
		ifaceParamAny(),
		ifaceErName(),
	}
}

// ifaceSize emits a single finding per interface: a warning above the
// soft limit that escalates to an error once the hard limit is hit.
func ifaceSize() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "iface-size",
		Category: rulesets.CategoryInterfaceDesign,
		Severity: severity.Warning,
		Title:    "small interfaces compose, big ones calcify",
		Kinds:    []srcmodel.Kind{srcmodel.KindInterface},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			count := len(unit.Interface.Methods)
			if count <= limits.MaxInterfaceMethods {
				return nil
			}
			violation := rulesets.Violation{
				Message: fmt.Sprintf("interface %s declares %d methods; prefer small, composable interfaces", unit.Interface.Name, count),
			}
			if count >= limits.ErrorInterfaceMethods {
				violation.Severity = severity.Error
			}
			return []rulesets.Violation{violation}
		},
	}
}

func isAnyType(typeName string) bool {
	return typeName == "any" || typeName == "interface{}"
}

func localInterface(file *srcmodel.File, name string) bool {
	for _, unit := range file.Units {
		if unit.Kind == srcmodel.KindInterface && unit.Interface.Name == name {
			return true
		}
	}
	return false
}

func ifaceReturn() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "iface-return",
		Category: rulesets.CategoryInterfaceDesign,
		Severity: severity.Warning,
		Title:    "accept interfaces, return structs",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			for _, result := range unit.Func.Results {
				if result == "error" {
					continue
				}
				if isAnyType(result) || localInterface(file, result) {
					return []rulesets.Violation{{
						Message: fmt.Sprintf("%s returns interface type %s; return the concrete type and let callers abstract", unit.Func.Name, result),
					}}
				}
			}
			return nil
		},
	}
}

func ifaceParamAny() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "iface-param-any",
		Category: rulesets.CategoryInterfaceDesign,
		Severity: severity.Warning,
		Title:    "empty interfaces say nothing",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			for _, param := range unit.Func.Params {
				if !isAnyType(param.Type) {
					continue
				}
				return []rulesets.Violation{{
					Message: fmt.Sprintf("%s takes a bare %s parameter; a named interface states what callers must provide", unit.Func.Name, param.Type),
				}}
			}
			return nil
		},
	}
}

func ifaceErName() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "iface-er-name",
		Category: rulesets.CategoryInterfaceDesign,
		Severity: severity.Info,
		Title:    "one method, one -er name",
		Kinds:    []srcmodel.Kind{srcmodel.KindInterface},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			iface := unit.Interface
			if !iface.Exported || len(iface.Methods) != 1 || len(iface.Embeds) != 0 {
				return nil
			}
			if strings.HasSuffix(iface.Name, "er") || strings.HasSuffix(iface.Name, "or") {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("single-method interface %s is conventionally named after its method, %s plus an -er suffix", iface.Name, iface.Methods[0]),
			}}
		},
	}
}
