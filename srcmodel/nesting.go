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

import "go/ast"

// nestingDepth computes the maximum depth of nested control-flow
// statements in a function body. An else-if chain stays on the level
// of its leading if, and function literals are measured separately.
func nestingDepth(body *ast.BlockStmt) int {
	return stmtsDepth(body.List)
}

func stmtsDepth(list []ast.Stmt) int {
	max := 0
	for _, stmt := range list {
		if d := stmtDepth(stmt); d > max {
			max = d
		}
	}
	return max
}

func stmtDepth(stmt ast.Stmt) int {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return stmtsDepth(s.List)
	case *ast.IfStmt:
		d := 1 + stmtsDepth(s.Body.List)
		if s.Else != nil {
			if e := elseDepth(s.Else); e > d {
				d = e
			}
		}
		return d
	case *ast.ForStmt:
		return 1 + stmtsDepth(s.Body.List)
	case *ast.RangeStmt:
		return 1 + stmtsDepth(s.Body.List)
	case *ast.SwitchStmt:
		return 1 + clausesDepth(s.Body.List)
	case *ast.TypeSwitchStmt:
		return 1 + clausesDepth(s.Body.List)
	case *ast.SelectStmt:
		return 1 + clausesDepth(s.Body.List)
	case *ast.LabeledStmt:
		return stmtDepth(s.Stmt)
	}
	return 0
}

func elseDepth(stmt ast.Stmt) int {
	switch s := stmt.(type) {
	case *ast.IfStmt:
		d := 1 + stmtsDepth(s.Body.List)
		if s.Else != nil {
			if e := elseDepth(s.Else); e > d {
				d = e
			}
		}
		return d
	case *ast.BlockStmt:
		return 1 + stmtsDepth(s.List)
	}
	return 0
}

func clausesDepth(list []ast.Stmt) int {
	max := 0
	for _, clause := range list {
		var body []ast.Stmt
		switch c := clause.(type) {
		case *ast.CaseClause:
			body = c.Body
		case *ast.CommClause:
			body = c.Body
		}
		if d := stmtsDepth(body); d > max {
			max = d
		}
	}
	return max
}
