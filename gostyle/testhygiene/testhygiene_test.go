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

package testhygiene

import (
	"testing"

	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func match(rule *rulesets.Rule, unit *srcmodel.Unit, file *srcmodel.File) []rulesets.Violation {
	return rule.Match(unit, file, rulesets.DefaultLimits())
}

func callUnit(info *srcmodel.CallInfo) *srcmodel.Unit {
	return &srcmodel.Unit{
		Kind: srcmodel.KindCall,
		Name: info.Callee,
		Pos:  srcmodel.Pos{Line: 15, Col: 2},
		Call: info,
	}
}

func TestTestSleep(t *testing.T) {
	rule := testSleep()
	sleep := callUnit(&srcmodel.CallInfo{Callee: "time.Sleep", Args: 1, InTestFunc: true})
	inTest := &srcmodel.File{Path: "pool_test.go", PackageName: "pool"}
	if got := match(rule, sleep, inTest); len(got) != 1 {
		t.Fatalf("unexpected result for time.Sleep in a test file. got: %d violations. expected: 1.", len(got))
	}
	inLib := &srcmodel.File{Path: "pool.go", PackageName: "pool"}
	if got := match(rule, sleep, inLib); len(got) != 0 {
		t.Fatalf("unexpected result for time.Sleep in library code. got: %d violations. expected: 0.", len(got))
	}
	other := callUnit(&srcmodel.CallInfo{Callee: "time.After", Args: 1, InTestFunc: true})
	if got := match(rule, other, inTest); len(got) != 0 {
		t.Fatalf("unexpected result for time.After. got: %d violations. expected: 0.", len(got))
	}
}

func TestTestFatalGoroutine(t *testing.T) {
	rule := testFatalGoroutine()
	file := &srcmodel.File{Path: "pool_test.go", PackageName: "pool"}
	tests := []struct {
		info *srcmodel.CallInfo
		want int
	}{
		{&srcmodel.CallInfo{Callee: "t.Fatalf", Args: 2, InGoroutine: true, InTestFunc: true, TestingCall: true}, 1},
		{&srcmodel.CallInfo{Callee: "t.Fatal", Args: 1, InGoroutine: true, InTestFunc: true, TestingCall: true}, 1},
		{&srcmodel.CallInfo{Callee: "t.FailNow", InGoroutine: true, InTestFunc: true, TestingCall: true}, 1},
		{&srcmodel.CallInfo{Callee: "t.Fatalf", Args: 2, InTestFunc: true, TestingCall: true}, 0},
		{&srcmodel.CallInfo{Callee: "t.Errorf", Args: 2, InGoroutine: true, InTestFunc: true, TestingCall: true}, 0},
		{&srcmodel.CallInfo{Callee: "log.Fatalf", Args: 2, InGoroutine: true, InTestFunc: true}, 0},
	}
	for _, tt := range tests {
		got := match(rule, callUnit(tt.info), file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %s. got: %d violations. expected: %d.", tt.info.Callee, len(got), tt.want)
		}
	}
}

func TestTestSkipBare(t *testing.T) {
	rule := testSkipBare()
	file := &srcmodel.File{Path: "pool_test.go", PackageName: "pool"}
	tests := []struct {
		info *srcmodel.CallInfo
		want int
	}{
		{&srcmodel.CallInfo{Callee: "t.Skip", InTestFunc: true, TestingCall: true}, 1},
		{&srcmodel.CallInfo{Callee: "t.SkipNow", InTestFunc: true, TestingCall: true}, 1},
		{&srcmodel.CallInfo{Callee: "t.Skip", Args: 1, InTestFunc: true, TestingCall: true}, 0},
		{&srcmodel.CallInfo{Callee: "t.Skipf", Args: 2, InTestFunc: true, TestingCall: true}, 0},
		{&srcmodel.CallInfo{Callee: "t.Fatal", InTestFunc: true, TestingCall: true}, 0},
	}
	for _, tt := range tests {
		got := match(rule, callUnit(tt.info), file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %s with %d args. got: %d violations. expected: %d.",
				tt.info.Callee, tt.info.Args, len(got), tt.want)
		}
	}
}

func TestTestNameUnderscore(t *testing.T) {
	rule := testNameUnderscore()
	file := &srcmodel.File{Path: "pool_test.go", PackageName: "pool"}
	tests := []struct {
		info *srcmodel.FuncInfo
		want int
	}{
		{&srcmodel.FuncInfo{Name: "Test_Acquire", IsTest: true, InTestFile: true}, 1},
		{&srcmodel.FuncInfo{Name: "Benchmark_Acquire", IsBenchmark: true, InTestFile: true}, 1},
		{&srcmodel.FuncInfo{Name: "TestAcquire", IsTest: true, InTestFile: true}, 0},
		{&srcmodel.FuncInfo{Name: "build_fixture", InTestFile: true}, 0},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{Kind: srcmodel.KindFunc, Name: tt.info.Name, Func: tt.info}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %s. got: %d violations. expected: %d.", tt.info.Name, len(got), tt.want)
		}
	}
}
