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

// Package srcmodel decomposes a single Go source file into a flat,
// parser-independent list of structural units. Rule matchers consume
// these units and never touch go/ast nodes directly.
package srcmodel

import (
	"fmt"
)

// Kind tags the construct a Unit describes.
type Kind int

const (
	KindFile Kind = iota
	KindPackage
	KindImport
	KindFunc
	KindInterface
	KindType
	KindVar
	KindGo
	KindDefer
	KindChanMake
	KindSelect
	KindErrCheck
	KindCall
)

var kindNames = map[Kind]string{
	KindFile:      "file",
	KindPackage:   "package",
	KindImport:    "import",
	KindFunc:      "func",
	KindInterface: "interface",
	KindType:      "type",
	KindVar:       "var",
	KindGo:        "go",
	KindDefer:     "defer",
	KindChanMake:  "chan_make",
	KindSelect:    "select",
	KindErrCheck:  "err_check",
	KindCall:      "call",
}

func (k Kind) String() string {
	v, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", int(k))
	}
	return v
}

// Pos is a 1-based source position.
type Pos struct {
	Line int32
	Col  int32
}

// File is the result of extraction: every unit of one source file in
// source order, plus the raw comments for directive parsing.
type File struct {
	Path        string
	PackageName string
	Lines       int
	Units       []*Unit
	Comments    []Comment
}

type Comment struct {
	Pos  Pos
	Text string
}

// Unit is a tagged variant: Kind selects which payload pointer is set.
// Name carries the primary identifier where the construct has one.
type Unit struct {
	Kind Kind
	Name string
	Pos  Pos
	End  Pos

	File      *FileInfo
	Package   *PackageInfo
	Import    *ImportInfo
	Func      *FuncInfo
	Interface *InterfaceInfo
	Type      *TypeInfo
	Var       *VarInfo
	Go        *GoInfo
	Defer     *DeferInfo
	Chan      *ChanInfo
	Select    *SelectInfo
	ErrCheck  *ErrCheckInfo
	Call      *CallInfo
}

type FileInfo struct {
	Lines  int
	IsTest bool
}

type PackageInfo struct {
	Name   string
	IsMain bool
	IsTest bool
}

type ImportInfo struct {
	Path  string
	Alias string
	Dot   bool
	Blank bool
}

type Param struct {
	Name string
	Type string
}

type RecvInfo struct {
	Name    string
	Type    string
	Pointer bool
}

type FuncInfo struct {
	Name        string
	Exported    bool
	Recv        *RecvInfo
	Params      []Param
	Results     []string
	BodyLines   int
	MaxNesting  int
	IsInit      bool
	IsTest      bool
	IsBenchmark bool
	InTestFile  bool
}

// TestingParam returns the name of the *testing.T or *testing.B
// parameter, or "" if the function has none.
func (f *FuncInfo) TestingParam() string {
	for _, p := range f.Params {
		if p.Type == "*testing.T" || p.Type == "*testing.B" {
			return p.Name
		}
	}
	return ""
}

type InterfaceInfo struct {
	Name     string
	Exported bool
	Methods  []string
	Embeds   []string
}

type TypeInfo struct {
	Name       string
	Exported   bool
	IsStruct   bool
	SyncFields []string
}

type VarInfo struct {
	Names      []string
	Exported   bool
	Const      bool
	IsSentinel bool
	InTestFile bool
}

// Lifecycle classifies what a goroutine body does when left alone.
type Lifecycle int

const (
	// LifecycleTerminating bodies run to completion on every path.
	LifecycleTerminating Lifecycle = iota
	// LifecycleCancelAware bodies loop forever but wait on a
	// cancellation signal on every looping path.
	LifecycleCancelAware
	// LifecycleUnbounded bodies contain a forever-loop with at least
	// one path that never waits on a cancellation signal.
	LifecycleUnbounded
)

var lifecycleNames = map[Lifecycle]string{
	LifecycleTerminating: "terminating",
	LifecycleCancelAware: "cancel_aware",
	LifecycleUnbounded:   "unbounded",
}

func (l Lifecycle) String() string {
	v, ok := lifecycleNames[l]
	if !ok {
		return fmt.Sprintf("invalid(%d)", int(l))
	}
	return v
}

type GoInfo struct {
	Lifecycle  Lifecycle
	FuncName   string
	InLoop     bool
	InInit     bool
	InTestFunc bool
}

type DeferInfo struct {
	Call   string
	InLoop bool
}

type ChanInfo struct {
	Buffered  bool
	SizeKnown bool
	Size      int64
}

type SelectInfo struct {
	Cases        int
	HasDefault   bool
	DefaultEmpty bool
	InLoop       bool
}

// ErrHandling classifies how an error value is treated at one site.
type ErrHandling int

const (
	// ErrBareReturn propagates the error value unchanged.
	ErrBareReturn ErrHandling = iota
	// ErrWrapReturn returns the error through a known wrapping call.
	ErrWrapReturn
	// ErrStringCompare matches on the error's message text.
	ErrStringCompare
	// ErrSentinelCompare compares the error to a sentinel with == or !=.
	ErrSentinelCompare
	// ErrLogAndReturn both logs and propagates the same error.
	ErrLogAndReturn
	// ErrIgnored discards a call result with the blank identifier.
	ErrIgnored
)

var errHandlingNames = map[ErrHandling]string{
	ErrBareReturn:      "bare_return",
	ErrWrapReturn:      "wrap_return",
	ErrStringCompare:   "string_compare",
	ErrSentinelCompare: "sentinel_compare",
	ErrLogAndReturn:    "log_and_return",
	ErrIgnored:         "ignored",
}

func (h ErrHandling) String() string {
	v, ok := errHandlingNames[h]
	if !ok {
		return fmt.Sprintf("invalid(%d)", int(h))
	}
	return v
}

type ErrCheckInfo struct {
	Var      string
	Handling ErrHandling
	// GuardSentinel is set when an enclosing if-condition already
	// matched the same variable with errors.Is, errors.As or a
	// sentinel comparison.
	GuardSentinel bool
	WrapFunc      string
	HasWrapVerb   bool
}

type CallInfo struct {
	Callee      string
	Args        int
	InGoroutine bool
	InLoop      bool
	InDefer     bool
	InTestFunc  bool
	InInit      bool
	InMain      bool
	// TestingCall marks a method call on the enclosing test's
	// *testing.T or *testing.B parameter.
	TestingCall bool
}

// ParseError reports a file the adapter could not decompose. The run
// continues with sibling files.
type ParseError struct {
	Path string
	Pos  Pos
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Pos.Line, e.Pos.Col, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
