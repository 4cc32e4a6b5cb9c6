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
	"regexp"
)

// classifyGoBody decides how a goroutine body behaves over time. A
// body with no infinite loop terminates on its own. A body whose every
// infinite loop reaches a cancellation wait, or leaves the loop, on
// every iteration path is cancel-aware. Anything else runs unbounded.
func classifyGoBody(body *ast.BlockStmt) Lifecycle {
	loops := collectInfiniteLoops(body)
	if len(loops) == 0 {
		return LifecycleTerminating
	}
	for _, loop := range loops {
		if !stmtsCovered(loop.Body.List) {
			return LifecycleUnbounded
		}
	}
	return LifecycleCancelAware
}

// collectInfiniteLoops finds for-statements with no terminating
// condition. Range loops are excluded: ranging a channel ends when the
// sender closes it, and ranging anything else is bounded.
func collectInfiniteLoops(body *ast.BlockStmt) []*ast.ForStmt {
	var loops []*ast.ForStmt
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ForStmt:
			if isInfiniteFor(s) {
				loops = append(loops, s)
			}
		}
		return true
	})
	return loops
}

func isInfiniteFor(s *ast.ForStmt) bool {
	if s.Cond == nil {
		return true
	}
	ident, ok := s.Cond.(*ast.Ident)
	return ok && ident.Name == "true"
}

// stmtsCovered reports whether some statement in list, on every path
// it admits, waits on a cancellation signal or leaves the loop.
func stmtsCovered(list []ast.Stmt) bool {
	for _, stmt := range list {
		if stmtCovers(stmt) {
			return true
		}
	}
	return false
}

func stmtCovers(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BranchStmt:
		return s.Tok == token.BREAK
	case *ast.ExprStmt:
		return exprWaits(s.X)
	case *ast.AssignStmt:
		for _, rhs := range s.Rhs {
			if exprWaits(rhs) {
				return true
			}
		}
		return false
	case *ast.SelectStmt:
		return selectCovers(s)
	case *ast.BlockStmt:
		return stmtsCovered(s.List)
	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		return stmtsCovered(s.Body.List) && stmtCovers(s.Else)
	case *ast.SwitchStmt:
		return switchCovers(s)
	case *ast.LabeledStmt:
		return stmtCovers(s.Stmt)
	}
	return false
}

// selectCovers holds for a blocking select with a cancellation case,
// or for any select whose every clause body covers on its own.
func selectCovers(s *ast.SelectStmt) bool {
	hasDefault := false
	cancelWait := false
	bodiesCover := true
	for _, clause := range s.Body.List {
		comm, ok := clause.(*ast.CommClause)
		if !ok {
			continue
		}
		if comm.Comm == nil {
			hasDefault = true
		} else if commWaitsOnCancel(comm.Comm) {
			cancelWait = true
		}
		if !stmtsCovered(comm.Body) {
			bodiesCover = false
		}
	}
	if !hasDefault && cancelWait {
		return true
	}
	return bodiesCover
}

func switchCovers(s *ast.SwitchStmt) bool {
	hasDefault := false
	for _, clause := range s.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		if cc.List == nil {
			hasDefault = true
		}
		if !stmtsCovered(cc.Body) {
			return false
		}
	}
	return hasDefault
}

func commWaitsOnCancel(comm ast.Stmt) bool {
	switch s := comm.(type) {
	case *ast.ExprStmt:
		return exprWaits(s.X)
	case *ast.AssignStmt:
		for _, rhs := range s.Rhs {
			if exprWaits(rhs) {
				return true
			}
		}
	}
	return false
}

func exprWaits(e ast.Expr) bool {
	unary, ok := e.(*ast.UnaryExpr)
	if !ok || unary.Op != token.ARROW {
		return false
	}
	return cancelSource(unary.X)
}

var cancelNamePattern = regexp.MustCompile(`(?i)done|quit|stop|cancel|exit|clos|shutdown|halt`)

// cancelSource matches receive operands that plausibly carry a
// cancellation signal: a Done() accessor or a channel whose name
// suggests teardown.
func cancelSource(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.CallExpr:
		if sel, ok := x.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "Done" {
			return true
		}
	case *ast.Ident:
		return cancelNamePattern.MatchString(x.Name)
	case *ast.SelectorExpr:
		return cancelNamePattern.MatchString(x.Sel.Name)
	case *ast.ParenExpr:
		return cancelSource(x.X)
	}
	return false
}
