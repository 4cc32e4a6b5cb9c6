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

package concurrency

import (
	"strings"
	"testing"

	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func match(rule *rulesets.Rule, unit *srcmodel.Unit, file *srcmodel.File) []rulesets.Violation {
	return rule.Match(unit, file, rulesets.DefaultLimits())
}

func TestGoroutineLifecycle(t *testing.T) {
	rule := goroutineLifecycle()
	file := &srcmodel.File{Path: "worker.go", PackageName: "worker"}
	tests := []struct {
		lifecycle srcmodel.Lifecycle
		want      int
	}{
		{srcmodel.LifecycleTerminating, 0},
		{srcmodel.LifecycleCancelAware, 0},
		{srcmodel.LifecycleUnbounded, 1},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{
			Kind: srcmodel.KindGo,
			Name: "func literal",
			Pos:  srcmodel.Pos{Line: 12, Col: 2},
			Go:   &srcmodel.GoInfo{Lifecycle: tt.lifecycle, FuncName: "func literal"},
		}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %v. got: %d violations. expected: %d.", tt.lifecycle, len(got), tt.want)
		}
	}
}

func syncFile() *srcmodel.File {
	return &srcmodel.File{
		Path:        "pool.go",
		PackageName: "pool",
		Units: []*srcmodel.Unit{
			{
				Kind: srcmodel.KindType,
				Name: "Pool",
				Pos:  srcmodel.Pos{Line: 5, Col: 1},
				Type: &srcmodel.TypeInfo{Name: "Pool", Exported: true, IsStruct: true, SyncFields: []string{"mu"}},
			},
		},
	}
}

func TestMutexByValue(t *testing.T) {
	file := syncFile()
	rule := mutexByValue()
	tests := []struct {
		name string
		info *srcmodel.FuncInfo
		want int
	}{
		{
			"value receiver on lock-bearing type",
			&srcmodel.FuncInfo{Name: "Get", Recv: &srcmodel.RecvInfo{Name: "p", Type: "Pool"}},
			1,
		},
		{
			"pointer receiver is fine",
			&srcmodel.FuncInfo{Name: "Get", Recv: &srcmodel.RecvInfo{Name: "p", Type: "Pool", Pointer: true}},
			0,
		},
		{
			"mutex parameter by value",
			&srcmodel.FuncInfo{Name: "locked", Params: []srcmodel.Param{{Name: "mu", Type: "sync.Mutex"}}},
			1,
		},
		{
			"rwmutex parameter by value",
			&srcmodel.FuncInfo{Name: "locked", Params: []srcmodel.Param{{Name: "mu", Type: "sync.RWMutex"}}},
			1,
		},
		{
			"mutex pointer parameter is fine",
			&srcmodel.FuncInfo{Name: "locked", Params: []srcmodel.Param{{Name: "mu", Type: "*sync.Mutex"}}},
			0,
		},
		{
			"lock-bearing struct parameter by value",
			&srcmodel.FuncInfo{Name: "drain", Params: []srcmodel.Param{{Name: "p", Type: "Pool"}}},
			1,
		},
		{
			"lock-bearing struct pointer parameter is fine",
			&srcmodel.FuncInfo{Name: "drain", Params: []srcmodel.Param{{Name: "p", Type: "*Pool"}}},
			0,
		},
		{
			"value receiver plus value parameter reports both",
			&srcmodel.FuncInfo{
				Name:   "merge",
				Recv:   &srcmodel.RecvInfo{Name: "p", Type: "Pool"},
				Params: []srcmodel.Param{{Name: "other", Type: "Pool"}},
			},
			2,
		},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{Kind: srcmodel.KindFunc, Name: tt.info.Name, Pos: srcmodel.Pos{Line: 9, Col: 1}, Func: tt.info}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %q. got: %d violations. expected: %d.", tt.name, len(got), tt.want)
		}
	}
}

func TestWaitGroupParamValue(t *testing.T) {
	rule := waitGroupParamValue()
	file := &srcmodel.File{Path: "pool.go", PackageName: "pool"}
	byValue := &srcmodel.Unit{
		Kind: srcmodel.KindFunc,
		Name: "work",
		Func: &srcmodel.FuncInfo{Name: "work", Params: []srcmodel.Param{{Name: "wg", Type: "sync.WaitGroup"}}},
	}
	if got := match(rule, byValue, file); len(got) != 1 {
		t.Fatalf("unexpected result for by-value WaitGroup. got: %d violations. expected: 1.", len(got))
	}
	byPointer := &srcmodel.Unit{
		Kind: srcmodel.KindFunc,
		Name: "work",
		Func: &srcmodel.FuncInfo{Name: "work", Params: []srcmodel.Param{{Name: "wg", Type: "*sync.WaitGroup"}}},
	}
	if got := match(rule, byPointer, file); len(got) != 0 {
		t.Fatalf("unexpected result for pointer WaitGroup. got: %d violations. expected: 0.", len(got))
	}
}

func TestDeferInLoop(t *testing.T) {
	rule := deferInLoop()
	file := &srcmodel.File{Path: "walk.go", PackageName: "walk"}
	inLoop := &srcmodel.Unit{
		Kind:  srcmodel.KindDefer,
		Name:  "f.Close",
		Pos:   srcmodel.Pos{Line: 21, Col: 3},
		Defer: &srcmodel.DeferInfo{Call: "f.Close", InLoop: true},
	}
	got := match(rule, inLoop, file)
	if len(got) != 1 {
		t.Fatalf("unexpected result for defer in loop. got: %d violations. expected: 1.", len(got))
	}
	if !strings.Contains(got[0].Message, "f.Close") {
		t.Fatalf("expected the message to name the deferred call, got: %q", got[0].Message)
	}
	outside := &srcmodel.Unit{
		Kind:  srcmodel.KindDefer,
		Name:  "f.Close",
		Defer: &srcmodel.DeferInfo{Call: "f.Close"},
	}
	if got := match(rule, outside, file); len(got) != 0 {
		t.Fatalf("unexpected result for defer outside loop. got: %d violations. expected: 0.", len(got))
	}
}

func TestChanSize(t *testing.T) {
	rule := chanSize()
	file := &srcmodel.File{Path: "queue.go", PackageName: "queue"}
	tests := []struct {
		info *srcmodel.ChanInfo
		want int
	}{
		{&srcmodel.ChanInfo{}, 0},
		{&srcmodel.ChanInfo{Buffered: true, SizeKnown: true, Size: 1}, 0},
		{&srcmodel.ChanInfo{Buffered: true, SizeKnown: true, Size: 1024}, 0},
		{&srcmodel.ChanInfo{Buffered: true, SizeKnown: true, Size: 1025}, 1},
		{&srcmodel.ChanInfo{Buffered: true}, 0},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{Kind: srcmodel.KindChanMake, Name: "chan int", Chan: tt.info}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %+v. got: %d violations. expected: %d.", tt.info, len(got), tt.want)
		}
	}
}

func TestSelectDefaultSpin(t *testing.T) {
	rule := selectDefaultSpin()
	file := &srcmodel.File{Path: "loop.go", PackageName: "loop"}
	tests := []struct {
		info *srcmodel.SelectInfo
		want int
	}{
		{&srcmodel.SelectInfo{Cases: 1, HasDefault: true, DefaultEmpty: true, InLoop: true}, 1},
		{&srcmodel.SelectInfo{Cases: 1, HasDefault: true, DefaultEmpty: true}, 0},
		{&srcmodel.SelectInfo{Cases: 1, HasDefault: true, InLoop: true}, 0},
		{&srcmodel.SelectInfo{Cases: 2, InLoop: true}, 0},
	}
	for _, tt := range tests {
		unit := &srcmodel.Unit{Kind: srcmodel.KindSelect, Name: "select", Select: tt.info}
		got := match(rule, unit, file)
		if len(got) != tt.want {
			t.Errorf("unexpected result for %+v. got: %d violations. expected: %d.", tt.info, len(got), tt.want)
		}
	}
}

func TestGoInInit(t *testing.T) {
	rule := goInInit()
	file := &srcmodel.File{Path: "boot.go", PackageName: "boot"}
	inInit := &srcmodel.Unit{
		Kind: srcmodel.KindGo,
		Name: "warm",
		Go:   &srcmodel.GoInfo{Lifecycle: srcmodel.LifecycleTerminating, FuncName: "warm", InInit: true},
	}
	if got := match(rule, inInit, file); len(got) != 1 {
		t.Fatalf("unexpected result for go in init. got: %d violations. expected: 1.", len(got))
	}
	elsewhere := &srcmodel.Unit{
		Kind: srcmodel.KindGo,
		Name: "warm",
		Go:   &srcmodel.GoInfo{Lifecycle: srcmodel.LifecycleTerminating, FuncName: "warm"},
	}
	if got := match(rule, elsewhere, file); len(got) != 0 {
		t.Fatalf("unexpected result for go outside init. got: %d violations. expected: 0.", len(got))
	}
}
