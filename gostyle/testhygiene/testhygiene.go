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

// Package testhygiene holds the rules about test code.
package testhygiene

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		testSleep(),
		testFatalGoroutine(),
		testSkipBare(),
		testNameUnderscore(),
	}
}

func testSleep() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "test-sleep",
		Category: rulesets.CategoryTesting,
		Severity: severity.Warning,
		Title:    "sleeping tests are slow or flaky, usually both",
		Kinds:    []srcmodel.Kind{srcmodel.KindCall},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if unit.Call.Callee != "time.Sleep" || !strings.HasSuffix(file.Path, "_test.go") {
				return nil
			}
			return []rulesets.Violation{{
				Message: "time.Sleep in a test waits on a guess; synchronize on a channel or poll with a deadline",
			}}
		},
	}
}

func testFatalGoroutine() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "test-fatal-goroutine",
		Category: rulesets.CategoryTesting,
		Severity: severity.Error,
		Title:    "Fatal must run on the test goroutine",
		Kinds:    []srcmodel.Kind{srcmodel.KindCall},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			call := unit.Call
			if !call.TestingCall || !call.InGoroutine {
				return nil
			}
			if !strings.HasSuffix(call.Callee, ".Fatal") &&
				!strings.HasSuffix(call.Callee, ".Fatalf") &&
				!strings.HasSuffix(call.Callee, ".FailNow") {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s from a spawned goroutine does not stop the test; use Error and signal the test goroutine", call.Callee),
			}}
		},
	}
}

func testSkipBare() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "test-skip-bare",
		Category: rulesets.CategoryTesting,
		Severity: severity.Info,
		Title:    "a skip needs a reason",
		Kinds:    []srcmodel.Kind{srcmodel.KindCall},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			call := unit.Call
			if !call.TestingCall || call.Args != 0 {
				return nil
			}
			if !strings.HasSuffix(call.Callee, ".Skip") && !strings.HasSuffix(call.Callee, ".SkipNow") {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s gives no reason; the next reader has to dig through history to learn why", call.Callee),
			}}
		},
	}
}

func testNameUnderscore() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "test-name-underscore",
		Category: rulesets.CategoryTesting,
		Severity: severity.Info,
		Title:    "test names read as sentences after the prefix",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			fn := unit.Func
			if !fn.IsTest && !fn.IsBenchmark {
				return nil
			}
			if !strings.HasPrefix(fn.Name, "Test_") && !strings.HasPrefix(fn.Name, "Benchmark_") {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("%s separates the prefix with an underscore; TestName style keeps go test output readable", fn.Name),
			}}
		},
	}
}
