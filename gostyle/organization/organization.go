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

// Package organization holds the rules about file, function and
// package layout.
package organization

import (
	"fmt"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		fileTooLong(),
		funcTooLong(),
		deepNesting(),
		globalVar(),
		initFunc(),
		importDot(),
		importBlank(),
	}
}

func fileTooLong() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "file-too-long",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Info,
		Title:    "long files bury their structure",
		Kinds:    []srcmodel.Kind{srcmodel.KindFile},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			lines := unit.File.Lines
			if lines <= limits.MaxFileLines {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("file runs %d lines, past the limit of %d; split it along its responsibilities", lines, limits.MaxFileLines),
			}}
		},
	}
}

func funcTooLong() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "func-too-long",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Warning,
		Title:    "long functions hide smaller ones",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			lines := unit.Func.BodyLines
			if lines <= limits.MaxFuncLines {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s is %d lines long, past the limit of %d; extract the separable steps", unit.Func.Name, lines, limits.MaxFuncLines),
			}}
		},
	}
}

func deepNesting() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "deep-nesting",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Warning,
		Title:    "early returns flatten deep nesting",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			depth := unit.Func.MaxNesting
			if depth <= limits.MaxNesting {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s nests %d levels deep, past the limit of %d; invert conditions and return early", unit.Func.Name, depth, limits.MaxNesting),
			}}
		},
	}
}

func globalVar() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "global-var",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Warning,
		Title:    "mutable package state couples everything that touches it",
		Kinds:    []srcmodel.Kind{srcmodel.KindVar},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			v := unit.Var
			if v.Const || v.IsSentinel || v.InTestFile {
				return nil
			}
			for _, name := range v.Names {
				if name == "_" {
					continue
				}
				return []rulesets.Violation{{
					Message: fmt.Sprintf("package-level variable %s is mutable shared state; pass it to the code that needs it", name),
				}}
			}
			return nil
		},
	}
}

func initFunc() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "init-func",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Info,
		Title:    "init runs unasked and cannot fail",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !unit.Func.IsInit {
				return nil
			}
			return []rulesets.Violation{{
				Message: "init runs before main with no error path; prefer an explicit constructor the caller invokes",
			}}
		},
	}
}

func importDot() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "import-dot",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Warning,
		Title:    "dot imports hide where names come from",
		Kinds:    []srcmodel.Kind{srcmodel.KindImport},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !unit.Import.Dot {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("dot import of %s merges its names into this package; qualify the references instead", unit.Import.Path),
			}}
		},
	}
}

func importBlank() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "import-blank",
		Category: rulesets.CategoryOrganization,
		Severity: severity.Info,
		Title:    "blank imports run hidden init code",
		Kinds:    []srcmodel.Kind{srcmodel.KindImport},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			// Registering drivers from package main is the
			// accepted use.
			if !unit.Import.Blank || file.PackageName == "main" {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("blank import of %s exists only for its init side effect; move it to package main or document why it lives here", unit.Import.Path),
			}}
		},
	}
}
