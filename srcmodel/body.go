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

package srcmodel

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"
)

// guard records an enclosing condition that inspected an error
// variable, so bare returns under a sentinel or type check can be told
// apart from unguarded pass-throughs.
type guard struct {
	errVar   string
	sentinel bool
	logged   bool
}

type bodyWalker struct {
	ex        *extractor
	fn        *FuncInfo
	loopDepth int
	goroutine bool
	inDefer   bool
	testParam string
	guards    []guard
}

func (ex *extractor) walkBody(body *ast.BlockStmt, fn *FuncInfo) {
	w := &bodyWalker{ex: ex, fn: fn, testParam: fn.TestingParam()}
	w.stmts(body.List)
}

func (w *bodyWalker) stmts(list []ast.Stmt) {
	for _, stmt := range list {
		w.stmt(stmt)
	}
}

func (w *bodyWalker) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		w.stmts(s.List)
	case *ast.IfStmt:
		w.ifStmt(s)
	case *ast.ForStmt:
		if s.Init != nil {
			w.stmt(s.Init)
		}
		if s.Cond != nil {
			w.expr(s.Cond)
		}
		if s.Post != nil {
			w.stmt(s.Post)
		}
		w.loopDepth++
		w.stmts(s.Body.List)
		w.loopDepth--
	case *ast.RangeStmt:
		w.expr(s.X)
		w.loopDepth++
		w.stmts(s.Body.List)
		w.loopDepth--
	case *ast.GoStmt:
		w.goStmt(s)
	case *ast.DeferStmt:
		w.deferStmt(s)
	case *ast.SelectStmt:
		w.selectStmt(s)
	case *ast.SwitchStmt:
		w.switchStmt(s)
	case *ast.TypeSwitchStmt:
		w.typeSwitchStmt(s)
	case *ast.ReturnStmt:
		w.returnStmt(s)
	case *ast.AssignStmt:
		w.assignStmt(s)
	case *ast.ExprStmt:
		w.expr(s.X)
	case *ast.SendStmt:
		w.expr(s.Chan)
		w.expr(s.Value)
	case *ast.IncDecStmt:
		w.expr(s.X)
	case *ast.DeclStmt:
		if decl, ok := s.Decl.(*ast.GenDecl); ok {
			for _, spec := range decl.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, value := range vs.Values {
						w.expr(value)
					}
				}
			}
		}
	case *ast.LabeledStmt:
		w.stmt(s.Stmt)
	}
}

func (w *bodyWalker) ifStmt(s *ast.IfStmt) {
	if s.Init != nil {
		w.stmt(s.Init)
	}
	w.expr(s.Cond)
	g, guarded := classifyGuard(s.Cond)
	if !guarded {
		if name := initTypeAssert(s.Init); name != "" {
			g, guarded = guard{errVar: name, sentinel: true}, true
		}
	}
	if guarded {
		g.logged = w.guardLogsError(s.Body)
		w.guards = append(w.guards, g)
		w.stmts(s.Body.List)
		w.guards = w.guards[:len(w.guards)-1]
	} else {
		w.stmts(s.Body.List)
	}
	if s.Else != nil {
		w.stmt(s.Else)
	}
}

func (w *bodyWalker) switchStmt(s *ast.SwitchStmt) {
	if s.Init != nil {
		w.stmt(s.Init)
	}
	tagVar := ""
	if s.Tag != nil {
		w.expr(s.Tag)
		if name, ok := errIdent(s.Tag); ok {
			tagVar = name
		}
	}
	for _, clause := range s.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		for _, e := range cc.List {
			w.expr(e)
		}
		g, guarded := guard{}, false
		if tagVar != "" {
			// switch err { case io.EOF: ... } compares by value
			for _, e := range cc.List {
				if isNil(e) {
					continue
				}
				switch e.(type) {
				case *ast.Ident, *ast.SelectorExpr:
					w.emitErrCheck(e.Pos(), e.End(), &ErrCheckInfo{Var: tagVar, Handling: ErrSentinelCompare})
				}
			}
			g, guarded = guard{errVar: tagVar, sentinel: true}, true
		} else if s.Tag == nil {
			for _, e := range cc.List {
				if cg, ok := classifyGuard(e); ok {
					g, guarded = cg, true
					break
				}
			}
		}
		if guarded {
			w.guards = append(w.guards, g)
		}
		w.stmts(cc.Body)
		if guarded {
			w.guards = w.guards[:len(w.guards)-1]
		}
	}
}

func (w *bodyWalker) typeSwitchStmt(s *ast.TypeSwitchStmt) {
	if s.Init != nil {
		w.stmt(s.Init)
	}
	guardVar := typeSwitchSubject(s.Assign)
	if guardVar != "" {
		w.guards = append(w.guards, guard{errVar: guardVar, sentinel: true})
	}
	for _, clause := range s.Body.List {
		if cc, ok := clause.(*ast.CaseClause); ok {
			w.stmts(cc.Body)
		}
	}
	if guardVar != "" {
		w.guards = w.guards[:len(w.guards)-1]
	}
}

func typeSwitchSubject(assign ast.Stmt) string {
	var x ast.Expr
	switch s := assign.(type) {
	case *ast.ExprStmt:
		if ta, ok := s.X.(*ast.TypeAssertExpr); ok {
			x = ta.X
		}
	case *ast.AssignStmt:
		if len(s.Rhs) == 1 {
			if ta, ok := s.Rhs[0].(*ast.TypeAssertExpr); ok {
				x = ta.X
			}
		}
	}
	if x == nil {
		return ""
	}
	if name, ok := errIdent(x); ok {
		return name
	}
	return ""
}

func initTypeAssert(init ast.Stmt) string {
	assign, ok := init.(*ast.AssignStmt)
	if !ok || len(assign.Rhs) != 1 {
		return ""
	}
	ta, ok := assign.Rhs[0].(*ast.TypeAssertExpr)
	if !ok {
		return ""
	}
	if name, ok := errIdent(ta.X); ok {
		return name
	}
	return ""
}

func (w *bodyWalker) goStmt(s *ast.GoStmt) {
	info := &GoInfo{
		FuncName:   calleeString(s.Call.Fun),
		InLoop:     w.loopDepth > 0,
		InInit:     w.fn.IsInit,
		InTestFunc: w.fn.IsTest || w.fn.IsBenchmark,
	}
	lit, isLit := s.Call.Fun.(*ast.FuncLit)
	if isLit {
		info.Lifecycle = classifyGoBody(lit.Body)
		info.FuncName = "func literal"
	} else {
		// a named callee's body lives elsewhere; assume it terminates
		info.Lifecycle = LifecycleTerminating
	}
	w.ex.add(&Unit{
		Kind: KindGo,
		Name: info.FuncName,
		Pos:  w.ex.pos(s.Pos()),
		End:  w.ex.pos(s.End()),
		Go:   info,
	})
	for _, arg := range s.Call.Args {
		w.expr(arg)
	}
	if isLit {
		saved := w.goroutine
		w.goroutine = true
		w.funcLit(lit, false)
		w.goroutine = saved
	} else {
		w.expr(s.Call.Fun)
	}
}

func (w *bodyWalker) deferStmt(s *ast.DeferStmt) {
	name := calleeString(s.Call.Fun)
	lit, isLit := s.Call.Fun.(*ast.FuncLit)
	if isLit {
		name = "func literal"
	}
	w.ex.add(&Unit{
		Kind:  KindDefer,
		Name:  name,
		Pos:   w.ex.pos(s.Pos()),
		End:   w.ex.pos(s.End()),
		Defer: &DeferInfo{Call: name, InLoop: w.loopDepth > 0},
	})
	for _, arg := range s.Call.Args {
		w.expr(arg)
	}
	if isLit {
		w.funcLit(lit, true)
	} else {
		w.expr(s.Call.Fun)
	}
}

func (w *bodyWalker) selectStmt(s *ast.SelectStmt) {
	info := &SelectInfo{InLoop: w.loopDepth > 0}
	for _, clause := range s.Body.List {
		comm, ok := clause.(*ast.CommClause)
		if !ok {
			continue
		}
		if comm.Comm == nil {
			info.HasDefault = true
			info.DefaultEmpty = emptyClause(comm.Body)
		} else {
			info.Cases++
		}
	}
	w.ex.add(&Unit{
		Kind:   KindSelect,
		Name:   "select",
		Pos:    w.ex.pos(s.Pos()),
		End:    w.ex.pos(s.End()),
		Select: info,
	})
	for _, clause := range s.Body.List {
		comm, ok := clause.(*ast.CommClause)
		if !ok {
			continue
		}
		if comm.Comm != nil {
			w.stmt(comm.Comm)
		}
		w.stmts(comm.Body)
	}
}

func emptyClause(body []ast.Stmt) bool {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.EmptyStmt:
		case *ast.BranchStmt:
			if s.Tok != token.CONTINUE {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (w *bodyWalker) returnStmt(s *ast.ReturnStmt) {
	for _, result := range s.Results {
		w.expr(result)
	}
	if len(s.Results) == 0 {
		return
	}
	switch last := s.Results[len(s.Results)-1].(type) {
	case *ast.Ident:
		if !isErrorName(last.Name) {
			return
		}
		info := &ErrCheckInfo{Var: last.Name, Handling: ErrBareReturn}
		if g := w.lookupGuard(last.Name); g != nil {
			if g.logged {
				info.Handling = ErrLogAndReturn
			}
			info.GuardSentinel = g.sentinel
		}
		w.emitErrCheck(s.Pos(), s.End(), info)
	case *ast.CallExpr:
		w.wrapReturn(s, last)
	}
}

// wrapFuncs are callees recognized as attaching context before an
// error leaves the function.
var wrapFuncs = map[string]bool{
	"fmt.Errorf":          true,
	"errors.Wrap":         true,
	"errors.Wrapf":        true,
	"errors.WithMessage":  true,
	"errors.WithMessagef": true,
	"errors.WithStack":    true,
	"xerrors.Errorf":      true,
}

func (w *bodyWalker) wrapReturn(ret *ast.ReturnStmt, call *ast.CallExpr) {
	callee := calleeString(call.Fun)
	if !wrapFuncs[callee] {
		return
	}
	errVar := ""
	for _, arg := range call.Args {
		if name, ok := errIdent(arg); ok {
			errVar = name
			break
		}
	}
	if errVar == "" {
		return
	}
	info := &ErrCheckInfo{Var: errVar, Handling: ErrWrapReturn, WrapFunc: callee}
	if callee == "fmt.Errorf" {
		info.HasWrapVerb = formatHasWrapVerb(call)
	} else {
		info.HasWrapVerb = true
	}
	w.emitErrCheck(ret.Pos(), ret.End(), info)
}

func formatHasWrapVerb(call *ast.CallExpr) bool {
	if len(call.Args) == 0 {
		return false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return false
	}
	return strings.Contains(lit.Value, "%w")
}

func (w *bodyWalker) assignStmt(s *ast.AssignStmt) {
	for _, rhs := range s.Rhs {
		w.expr(rhs)
	}
	for _, lhs := range s.Lhs {
		w.expr(lhs)
	}
	if len(s.Rhs) != 1 {
		return
	}
	if _, ok := s.Rhs[0].(*ast.CallExpr); !ok {
		return
	}
	last, ok := s.Lhs[len(s.Lhs)-1].(*ast.Ident)
	if !ok || last.Name != "_" {
		return
	}
	// x, _ := f() and _ = f() both drop the trailing result, which by
	// convention is the error
	w.emitErrCheck(s.Pos(), s.End(), &ErrCheckInfo{Var: "_", Handling: ErrIgnored})
}

func (w *bodyWalker) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.CallExpr:
		w.callExpr(x)
	case *ast.BinaryExpr:
		w.binaryExpr(x)
	case *ast.UnaryExpr:
		w.expr(x.X)
	case *ast.ParenExpr:
		w.expr(x.X)
	case *ast.StarExpr:
		w.expr(x.X)
	case *ast.SelectorExpr:
		w.expr(x.X)
	case *ast.IndexExpr:
		w.expr(x.X)
		w.expr(x.Index)
	case *ast.SliceExpr:
		w.expr(x.X)
	case *ast.KeyValueExpr:
		w.expr(x.Key)
		w.expr(x.Value)
	case *ast.CompositeLit:
		for _, elt := range x.Elts {
			w.expr(elt)
		}
	case *ast.TypeAssertExpr:
		w.expr(x.X)
	case *ast.FuncLit:
		w.funcLit(x, false)
	}
}

func (w *bodyWalker) funcLit(lit *ast.FuncLit, inDefer bool) {
	saveLoop, saveDefer, saveGuards := w.loopDepth, w.inDefer, w.guards
	w.loopDepth, w.inDefer, w.guards = 0, inDefer, nil
	w.stmts(lit.Body.List)
	w.loopDepth, w.inDefer, w.guards = saveLoop, saveDefer, saveGuards
}

func (w *bodyWalker) callExpr(call *ast.CallExpr) {
	callee := calleeString(call.Fun)
	if callee == "make" && len(call.Args) > 0 && w.chanMake(call) {
		return
	}
	if callee == "strings.Contains" && len(call.Args) == 2 {
		if name := errorTextOperand(call.Args[0]); name != "" {
			w.emitErrCheck(call.Pos(), call.End(), &ErrCheckInfo{Var: name, Handling: ErrStringCompare})
		}
	}
	w.interestingCall(call, callee)
	if lit, ok := call.Fun.(*ast.FuncLit); ok {
		w.funcLit(lit, false)
	} else {
		w.expr(call.Fun)
	}
	for _, arg := range call.Args {
		w.expr(arg)
	}
}

func (w *bodyWalker) chanMake(call *ast.CallExpr) bool {
	chanType, ok := call.Args[0].(*ast.ChanType)
	if !ok {
		return false
	}
	info := &ChanInfo{}
	if len(call.Args) >= 2 {
		info.Buffered = true
		if lit, ok := call.Args[1].(*ast.BasicLit); ok && lit.Kind == token.INT {
			if size, err := strconv.ParseInt(lit.Value, 0, 64); err == nil {
				info.SizeKnown = true
				info.Size = size
			}
		}
	}
	w.ex.add(&Unit{
		Kind: KindChanMake,
		Name: types.ExprString(chanType),
		Pos:  w.ex.pos(call.Pos()),
		End:  w.ex.pos(call.End()),
		Chan: info,
	})
	return true
}

var interestingCallees = map[string]bool{
	"time.Sleep":  true,
	"panic":       true,
	"os.Exit":     true,
	"log.Fatal":   true,
	"log.Fatalf":  true,
	"log.Fatalln": true,
	"glog.Fatal":  true,
	"glog.Fatalf": true,
	"glog.Exit":   true,
	"glog.Exitf":  true,
}

func (w *bodyWalker) interestingCall(call *ast.CallExpr, callee string) {
	testing := false
	switch {
	case interestingCallees[callee]:
	case w.testParam != "" && isTestingAbort(callee, w.testParam):
		testing = true
	default:
		return
	}
	info := &CallInfo{
		Callee:      callee,
		Args:        len(call.Args),
		InGoroutine: w.goroutine,
		InLoop:      w.loopDepth > 0,
		InDefer:     w.inDefer,
		InTestFunc:  w.fn.IsTest || w.fn.IsBenchmark,
		InInit:      w.fn.IsInit,
		InMain:      w.ex.isMainPkg && w.fn.Recv == nil && w.fn.Name == "main",
		TestingCall: testing,
	}
	w.ex.add(&Unit{
		Kind: KindCall,
		Name: callee,
		Pos:  w.ex.pos(call.Pos()),
		End:  w.ex.pos(call.End()),
		Call: info,
	})
}

func isTestingAbort(callee, param string) bool {
	if !strings.HasPrefix(callee, param+".") {
		return false
	}
	switch strings.TrimPrefix(callee, param+".") {
	case "Fatal", "Fatalf", "FailNow", "Skip", "Skipf", "SkipNow":
		return true
	}
	return false
}

func (w *bodyWalker) binaryExpr(e *ast.BinaryExpr) {
	if e.Op == token.EQL || e.Op == token.NEQ {
		w.errCompare(e)
	}
	w.expr(e.X)
	w.expr(e.Y)
}

func (w *bodyWalker) errCompare(e *ast.BinaryExpr) {
	// nil checks are ordinary control flow
	if isNil(e.X) || isNil(e.Y) {
		return
	}
	var name string
	var other ast.Expr
	if n, ok := errIdent(e.X); ok {
		name, other = n, e.Y
	} else if n, ok := errIdent(e.Y); ok {
		name, other = n, e.X
	}
	if name == "" {
		if n := errorTextOperand(e.X); n != "" && isStringLit(e.Y) {
			w.emitErrCheck(e.Pos(), e.End(), &ErrCheckInfo{Var: n, Handling: ErrStringCompare})
		} else if n := errorTextOperand(e.Y); n != "" && isStringLit(e.X) {
			w.emitErrCheck(e.Pos(), e.End(), &ErrCheckInfo{Var: n, Handling: ErrStringCompare})
		}
		return
	}
	switch other.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		w.emitErrCheck(e.Pos(), e.End(), &ErrCheckInfo{Var: name, Handling: ErrSentinelCompare})
	}
}

// errorTextOperand matches a zero-argument x.Error() call on an error
// variable and returns the variable name.
func errorTextOperand(e ast.Expr) string {
	call, ok := e.(*ast.CallExpr)
	if !ok || len(call.Args) != 0 {
		return ""
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Error" {
		return ""
	}
	if name, ok := errIdent(sel.X); ok {
		return name
	}
	return ""
}

func (w *bodyWalker) guardLogsError(body *ast.BlockStmt) bool {
	for _, stmt := range body.List {
		exprStmt, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		call, ok := exprStmt.X.(*ast.CallExpr)
		if !ok {
			continue
		}
		if isLogCallee(calleeString(call.Fun)) && callMentionsError(call) {
			return true
		}
	}
	return false
}

func isLogCallee(callee string) bool {
	for _, prefix := range []string{"log.", "glog.", "logrus.", "fmt.Print", "fmt.Fprint"} {
		if strings.HasPrefix(callee, prefix) {
			return true
		}
	}
	dot := strings.LastIndex(callee, ".")
	if dot < 0 {
		return false
	}
	switch callee[dot+1:] {
	case "Error", "Errorf", "Warn", "Warnf", "Warning", "Warningf",
		"Info", "Infof", "Print", "Printf", "Println", "Debug", "Debugf":
		return true
	}
	return false
}

func callMentionsError(call *ast.CallExpr) bool {
	found := false
	for _, arg := range call.Args {
		ast.Inspect(arg, func(n ast.Node) bool {
			if ident, ok := n.(*ast.Ident); ok && isErrorName(ident.Name) {
				found = true
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

func classifyGuard(cond ast.Expr) (guard, bool) {
	switch c := cond.(type) {
	case *ast.BinaryExpr:
		if c.Op != token.EQL && c.Op != token.NEQ {
			return guard{}, false
		}
		if name, ok := errIdent(c.X); ok {
			if isNil(c.Y) {
				return guard{errVar: name}, true
			}
			return guard{errVar: name, sentinel: true}, true
		}
		if name, ok := errIdent(c.Y); ok {
			if isNil(c.X) {
				return guard{errVar: name}, true
			}
			return guard{errVar: name, sentinel: true}, true
		}
	case *ast.CallExpr:
		switch calleeString(c.Fun) {
		case "errors.Is", "errors.As", "xerrors.Is", "xerrors.As":
			if len(c.Args) > 0 {
				if name, ok := errIdent(c.Args[0]); ok {
					return guard{errVar: name, sentinel: true}, true
				}
			}
		}
	case *ast.UnaryExpr:
		if c.Op == token.NOT {
			return classifyGuard(c.X)
		}
	case *ast.ParenExpr:
		return classifyGuard(c.X)
	}
	return guard{}, false
}

func (w *bodyWalker) lookupGuard(name string) *guard {
	for i := len(w.guards) - 1; i >= 0; i-- {
		if w.guards[i].errVar == name {
			return &w.guards[i]
		}
	}
	return nil
}

func (w *bodyWalker) emitErrCheck(pos, end token.Pos, info *ErrCheckInfo) {
	w.ex.add(&Unit{
		Kind:     KindErrCheck,
		Name:     info.Var,
		Pos:      w.ex.pos(pos),
		End:      w.ex.pos(end),
		ErrCheck: info,
	})
}

// isErrorName reports whether a name lexically denotes an error value.
func isErrorName(name string) bool {
	if name == "" || name == "_" {
		return false
	}
	if name == "err" {
		return true
	}
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "err") ||
		strings.HasSuffix(lower, "err") ||
		strings.HasSuffix(lower, "error")
}

func errIdent(e ast.Expr) (string, bool) {
	ident, ok := e.(*ast.Ident)
	if !ok || !isErrorName(ident.Name) {
		return "", false
	}
	return ident.Name, true
}

func isNil(e ast.Expr) bool {
	ident, ok := e.(*ast.Ident)
	return ok && ident.Name == "nil"
}

func isStringLit(e ast.Expr) bool {
	lit, ok := e.(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
