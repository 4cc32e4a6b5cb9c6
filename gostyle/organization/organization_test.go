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

package organization

import (
	"testing"

	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func match(rule *rulesets.Rule, unit *srcmodel.Unit, file *srcmodel.File) []rulesets.Violation {
	return rule.Match(unit, file, rulesets.DefaultLimits())
}

func TestFileTooLong(t *testing.T) {
	rule := fileTooLong()
	file := &srcmodel.File{Path: "big.go", PackageName: "big"}
	tests := []struct {
		lines int
		want  int
	}{
		{999, 0},
		{1000, 0},
		{1001, 1},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{
			Kind: srcmodel.KindFile,
			Name: file.Path,
			Pos:  srcmodel.Pos{Line: 1, Col: 1},
			File: &srcmodel.FileInfo{Lines: tt.lines},
		}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %d lines. got: %d violations. expected: %d.", tt.lines, len(got), tt.want)
		}
	}
}

func TestFuncTooLong(t *testing.T) {
	rule := funcTooLong()
	file := &srcmodel.File{Path: "big.go", PackageName: "big"}
	tests := []struct {
		lines int
		want  int
	}{
		{80, 0},
		{81, 1},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{
			Kind: srcmodel.KindFunc,
			Name: "Process",
			Func: &srcmodel.FuncInfo{Name: "Process", Exported: true, BodyLines: tt.lines},
		}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %d body lines. got: %d violations. expected: %d.", tt.lines, len(got), tt.want)
		}
	}
}

func TestDeepNesting(t *testing.T) {
	rule := deepNesting()
	file := &srcmodel.File{Path: "big.go", PackageName: "big"}
	tests := []struct {
		depth int
		want  int
	}{
		{4, 0},
		{5, 1},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{
			Kind: srcmodel.KindFunc,
			Name: "walk",
			Func: &srcmodel.FuncInfo{Name: "walk", MaxNesting: tt.depth},
		}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for depth %d. got: %d violations. expected: %d.", tt.depth, len(got), tt.want)
		}
	}
}

func TestGlobalVar(t *testing.T) {
	rule := globalVar()
	file := &srcmodel.File{Path: "state.go", PackageName: "state"}
	tests := []struct {
		name string
		info *srcmodel.VarInfo
		want int
	}{
		{"mutable package state", &srcmodel.VarInfo{Names: []string{"cache"}}, 1},
		{"constant", &srcmodel.VarInfo{Names: []string{"limit"}, Const: true}, 0},
		{"sentinel error", &srcmodel.VarInfo{Names: []string{"ErrClosed"}, Exported: true, IsSentinel: true}, 0},
		{"test fixture", &srcmodel.VarInfo{Names: []string{"fixture"}, InTestFile: true}, 0},
		{"blank only", &srcmodel.VarInfo{Names: []string{"_"}}, 0},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{Kind: srcmodel.KindVar, Name: tt.info.Names[0], Var: tt.info}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %q. got: %d violations. expected: %d.", tt.name, len(got), tt.want)
		}
	}
}

func TestInitFunc(t *testing.T) {
	rule := initFunc()
	file := &srcmodel.File{Path: "boot.go", PackageName: "boot"}
	initUnit := &srcmodel.Unit{
		Kind: srcmodel.KindFunc,
		Name: "init",
		Func: &srcmodel.FuncInfo{Name: "init", IsInit: true},
	}
	if got := match(rule, initUnit, file); len(got) != 1 {
		t.Fatalf("unexpected result for init. got: %d violations. expected: 1.", len(got))
	}
	plain := &srcmodel.Unit{
		Kind: srcmodel.KindFunc,
		Name: "Setup",
		Func: &srcmodel.FuncInfo{Name: "Setup", Exported: true},
	}
	if got := match(rule, plain, file); len(got) != 0 {
		t.Fatalf("unexpected result for Setup. got: %d violations. expected: 0.", len(got))
	}
}

func TestImportDot(t *testing.T) {
	rule := importDot()
	file := &srcmodel.File{Path: "calc.go", PackageName: "calc"}
	dot := &srcmodel.Unit{
		Kind:   srcmodel.KindImport,
		Name:   "math",
		Import: &srcmodel.ImportInfo{Path: "math", Dot: true},
	}
	if got := match(rule, dot, file); len(got) != 1 {
		t.Fatalf("unexpected result for dot import. got: %d violations. expected: 1.", len(got))
	}
	plain := &srcmodel.Unit{
		Kind:   srcmodel.KindImport,
		Name:   "math",
		Import: &srcmodel.ImportInfo{Path: "math"},
	}
	if got := match(rule, plain, file); len(got) != 0 {
		t.Fatalf("unexpected result for plain import. got: %d violations. expected: 0.", len(got))
	}
}

func TestImportBlank(t *testing.T) {
	rule := importBlank()
	blank := &srcmodel.Unit{
		Kind:   srcmodel.KindImport,
		Name:   "github.com/lib/pq",
		Import: &srcmodel.ImportInfo{Path: "github.com/lib/pq", Blank: true},
	}
	lib := &srcmodel.File{Path: "store.go", PackageName: "store"}
	if got := match(rule, blank, lib); len(got) != 1 {
		t.Fatalf("unexpected result for blank import in a library. got: %d violations. expected: 1.", len(got))
	}
	main := &srcmodel.File{Path: "main.go", PackageName: "main"}
	if got := match(rule, blank, main); len(got) != 0 {
		t.Fatalf("unexpected result for blank import in package main. got: %d violations. expected: 0.", len(got))
	}
}
