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

// Package errhandling holds the rules about how errors are produced,
// propagated and compared.
package errhandling

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		wrapMissing(),
		errIgnored(),
		stringCompare(),
		sentinelEquality(),
		wrapVerb(),
		logAndReturn(),
		panicUse(),
		osExit(),
	}
}

func wrapMissing() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-wrap-missing",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Error,
		Title:    "errors must gain context before they propagate",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			check := unit.ErrCheck
			if check.Handling != srcmodel.ErrBareReturn || check.GuardSentinel {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("error value %s is passed through without wrapping or handling", check.Var),
			}}
		},
	}
}

func errIgnored() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-ignored",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Error,
		Title:    "errors must not be discarded",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if unit.ErrCheck.Handling != srcmodel.ErrIgnored {
				return nil
			}
			return []rulesets.Violation{{
				Message: "an error result is discarded with the blank identifier",
			}}
		},
	}
}

func stringCompare() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-string-compare",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Error,
		Title:    "error text is not an API",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			check := unit.ErrCheck
			if check.Handling != srcmodel.ErrStringCompare {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("the text of %s is matched as a string; compare sentinels with errors.Is or types with errors.As", check.Var),
			}}
		},
	}
}

func sentinelEquality() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-sentinel-equality",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Warning,
		Title:    "wrapped errors break == comparisons",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			check := unit.ErrCheck
			if check.Handling != srcmodel.ErrSentinelCompare {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s is compared with ==; errors.Is also matches wrapped errors", check.Var),
			}}
		},
	}
}

func wrapVerb() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-wrap-verb",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Warning,
		Title:    "fmt.Errorf without %w severs the error chain",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			check := unit.ErrCheck
			if check.Handling != srcmodel.ErrWrapReturn || check.WrapFunc != "fmt.Errorf" || check.HasWrapVerb {
				return nil
			}
			return []rulesets.Violation{{
				Message: "fmt.Errorf formats the error without the %w verb, so errors.Is and errors.As cannot see the cause",
			}}
		},
	}
}

func logAndReturn() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "err-log-and-return",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Warning,
		Title:    "handle an error once",
		Kinds:    []srcmodel.Kind{srcmodel.KindErrCheck},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			check := unit.ErrCheck
			if check.Handling != srcmodel.ErrLogAndReturn {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s is both logged and returned, so every caller reports it again", check.Var),
			}}
		},
	}
}

func panicUse() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "panic-use",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Warning,
		Title:    "panics are not error handling",
		Kinds:    []srcmodel.Kind{srcmodel.KindCall},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if unit.Call.Callee != "panic" || strings.HasSuffix(file.Path, "_test.go") {
				return nil
			}
			return []rulesets.Violation{{
				Message: "panic takes down the whole process; return an error and let the caller decide",
			}}
		},
	}
}

var exitCallees = map[string]bool{
	"os.Exit":     true,
	"log.Fatal":   true,
	"log.Fatalf":  true,
	"log.Fatalln": true,
	"glog.Fatal":  true,
	"glog.Fatalf": true,
	"glog.Exit":   true,
	"glog.Exitf":  true,
}

func osExit() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "os-exit",
		Category: rulesets.CategoryErrorHandling,
		Severity: severity.Warning,
		Title:    "only main may end the process",
		Kinds:    []srcmodel.Kind{srcmodel.KindCall},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			call := unit.Call
			if !exitCallees[call.Callee] || call.InMain {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s exits the process outside main.main, skipping deferred cleanup", call.Callee),
			}}
		},
	}
}
