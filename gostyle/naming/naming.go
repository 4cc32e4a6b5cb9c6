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

// Package naming holds the rules about identifier, package and
// receiver naming conventions.
package naming

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/slices"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		pkgGenericName(),
		pkgTypeStutter(),
		nameStutter(),
		getterGetPrefix(),
		receiverThisSelf(),
		receiverInconsistent(),
		nameUnderscore(),
		nameAcronymCase(),
		ctxNotFirst(),
		ifacePrefix(),
		errNaming(),
	}
}

func upperAt(name string, i int) bool {
	if i >= len(name) {
		return false
	}
	c := name[i]
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func exportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func pkgGenericName() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "pkg-generic-name",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "a package name should say what it provides",
		Kinds:    []srcmodel.Kind{srcmodel.KindPackage},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !slices.Contains(limits.GenericPackageNames, unit.Package.Name) {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("package name %s describes nothing; name the package after what it provides", unit.Package.Name),
			}}
		},
	}
}

func pkgTypeStutter() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "pkg-type-stutter",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "callers already write the package name",
		Kinds:    []srcmodel.Kind{srcmodel.KindType, srcmodel.KindInterface, srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			name := unit.Name
			switch unit.Kind {
			case srcmodel.KindType:
				if !unit.Type.Exported {
					return nil
				}
			case srcmodel.KindInterface:
				if !unit.Interface.Exported {
					return nil
				}
			case srcmodel.KindFunc:
				if !unit.Func.Exported || unit.Func.Recv != nil {
					return nil
				}
			}
			pkg := file.PackageName
			if len(name) <= len(pkg) {
				return nil
			}
			if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(pkg)) {
				return nil
			}
			if !upperAt(name, len(pkg)) {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s.%s stutters; %s already reads as %s.%s", pkg, name, name, pkg, name[len(pkg):]),
			}}
		},
	}
}

func nameStutter() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "name-stutter",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "method names should not repeat the receiver type",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			fn := unit.Func
			if fn.Recv == nil || !fn.Exported {
				return nil
			}
			recvType := fn.Recv.Type
			if recvType == "" || len(fn.Name) <= len(recvType) {
				return nil
			}
			if !strings.HasPrefix(fn.Name, recvType) || !upperAt(fn.Name, len(recvType)) {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("method %s repeats the receiver type %s; %s reads better at the call site", fn.Name, recvType, fn.Name[len(recvType):]),
			}}
		},
	}
}

func getterGetPrefix() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "getter-get-prefix",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "Go getters drop the Get prefix",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			fn := unit.Func
			if fn.Recv == nil || len(fn.Params) != 0 {
				return nil
			}
			if !strings.HasPrefix(fn.Name, "Get") || !upperAt(fn.Name, 3) {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("getter %s carries a Get prefix; name it %s", fn.Name, fn.Name[3:]),
			}}
		},
	}
}

func receiverThisSelf() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "receiver-this-self",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "receivers get short names, not this or self",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			recv := unit.Func.Recv
			if recv == nil {
				return nil
			}
			switch recv.Name {
			case "this", "self", "me":
			default:
				return nil
			}
			short := strings.ToLower(recv.Type[:1])
			return []rulesets.Violation{{
				Message: fmt.Sprintf("receiver name %s is borrowed from another language; a short name like %s is conventional", recv.Name, short),
			}}
		},
	}
}

func receiverInconsistent() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "receiver-inconsistent",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "one receiver name per type",
		Kinds:    []srcmodel.Kind{srcmodel.KindFile},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			firstName := map[string]string{}
			flagged := map[string]bool{}
			var violations []rulesets.Violation
			for _, u := range file.Units {
				if u.Kind != srcmodel.KindFunc || u.Func.Recv == nil {
					continue
				}
				recv := u.Func.Recv
				if recv.Name == "" || recv.Name == "_" {
					continue
				}
				seen, ok := firstName[recv.Type]
				if !ok {
					firstName[recv.Type] = recv.Name
					continue
				}
				if recv.Name == seen || flagged[recv.Type] {
					continue
				}
				flagged[recv.Type] = true
				violations = append(violations, rulesets.Violation{
					Pos:     u.Pos,
					Message: fmt.Sprintf("methods on %s call the receiver %s elsewhere in this file; this one uses %s", recv.Type, seen, recv.Name),
				})
			}
			return violations
		},
	}
}

func nameUnderscore() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "name-underscore",
		Category: rulesets.CategoryNaming,
		Severity: severity.Info,
		Title:    "Go names are MixedCaps",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc, srcmodel.KindType, srcmodel.KindInterface, srcmodel.KindVar},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			var names []string
			switch unit.Kind {
			case srcmodel.KindFunc:
				// Test_ and Benchmark_ prefixes have a rule of
				// their own.
				if unit.Func.IsTest || unit.Func.IsBenchmark {
					return nil
				}
				names = []string{unit.Func.Name}
			case srcmodel.KindVar:
				names = unit.Var.Names
			default:
				names = []string{unit.Name}
			}
			var violations []rulesets.Violation
			for _, name := range names {
				if name == "_" || !strings.Contains(name, "_") {
					continue
				}
				violations = append(violations, rulesets.Violation{
					Message: fmt.Sprintf("%s uses underscores; Go names are MixedCaps", name),
				})
			}
			return violations
		},
	}
}

func ctxNotFirst() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "ctx-not-first",
		Category: rulesets.CategoryNaming,
		Severity: severity.Error,
		Title:    "context.Context comes first",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			for i, param := range unit.Func.Params {
				if param.Type != "context.Context" || i == 0 {
					continue
				}
				return []rulesets.Violation{{
					Message: fmt.Sprintf("%s takes context.Context as parameter %d; the context is passed first", unit.Func.Name, i+1),
				}}
			}
			return nil
		},
	}
}

func ifacePrefix() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "name-iface-prefix",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "interfaces describe behavior, not hierarchy",
		Kinds:    []srcmodel.Kind{srcmodel.KindInterface},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			name := unit.Interface.Name
			// Require I + Upper + lower so that IP, IO and IDMap
			// style names pass.
			if len(name) < 3 || name[0] != 'I' || !upperAt(name, 1) || upperAt(name, 2) {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("interface %s carries an I prefix; %s says the same without it", name, name[1:]),
			}}
		},
	}
}

func errNaming() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-naming",
		Category: rulesets.CategoryNaming,
		Severity: severity.Warning,
		Title:    "sentinels are named Err or err",
		Kinds:    []srcmodel.Kind{srcmodel.KindVar},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !unit.Var.IsSentinel {
				return nil
			}
			var violations []rulesets.Violation
			for _, name := range unit.Var.Names {
				if name == "_" {
					continue
				}
				want := "err"
				if exportedName(name) {
					want = "Err"
				}
				if strings.HasPrefix(name, want) {
					continue
				}
				violations = append(violations, rulesets.Violation{
					Message: fmt.Sprintf("sentinel error %s should carry an %s prefix so callers recognize it", name, want),
				})
			}
			return violations
		},
	}
}
