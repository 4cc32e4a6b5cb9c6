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
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/golang/glog"
	"golang.org/x/tools/go/ast/inspector"
)

// Extract parses src and flattens it into a File. The adapter is pure:
// no state is shared between calls and nothing is written anywhere.
func Extract(path string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, newParseError(path, err)
	}
	ex := &extractor{
		fset: fset,
		file: &File{
			Path:        path,
			PackageName: astFile.Name.Name,
		},
		isTestFile: strings.HasSuffix(path, "_test.go"),
	}
	if tokenFile := fset.File(astFile.Pos()); tokenFile != nil {
		ex.file.Lines = tokenFile.LineCount()
	}
	ex.extract(astFile)
	return ex.file, nil
}

func newParseError(path string, err error) *ParseError {
	parseErr := &ParseError{Path: path, Err: err}
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		parseErr.Pos = Pos{Line: toInt32(list[0].Pos.Line), Col: toInt32(list[0].Pos.Column)}
	}
	return parseErr
}

func toInt32(v int) int32 {
	n, err := safecast.Conv[int32](v)
	if err != nil {
		glog.Warningf("srcmodel.toInt32: %v", err)
		return 0
	}
	return n
}

type extractor struct {
	fset       *token.FileSet
	file       *File
	isTestFile bool
	isMainPkg  bool
}

func (ex *extractor) pos(p token.Pos) Pos {
	position := ex.fset.Position(p)
	return Pos{Line: toInt32(position.Line), Col: toInt32(position.Column)}
}

func (ex *extractor) add(u *Unit) {
	ex.file.Units = append(ex.file.Units, u)
}

func (ex *extractor) extract(astFile *ast.File) {
	pkgName := astFile.Name.Name
	ex.isMainPkg = pkgName == "main"
	ex.add(&Unit{
		Kind: KindFile,
		Name: ex.file.Path,
		Pos:  Pos{Line: 1, Col: 1},
		End:  Pos{Line: toInt32(ex.file.Lines), Col: 1},
		File: &FileInfo{Lines: ex.file.Lines, IsTest: ex.isTestFile},
	})
	ex.add(&Unit{
		Kind: KindPackage,
		Name: pkgName,
		Pos:  ex.pos(astFile.Name.Pos()),
		End:  ex.pos(astFile.Name.End()),
		Package: &PackageInfo{
			Name:   pkgName,
			IsMain: ex.isMainPkg,
			IsTest: strings.HasSuffix(pkgName, "_test"),
		},
	})
	for _, group := range astFile.Comments {
		for _, comment := range group.List {
			ex.file.Comments = append(ex.file.Comments, Comment{
				Pos:  ex.pos(comment.Pos()),
				Text: comment.Text,
			})
		}
	}
	ins := inspector.New([]*ast.File{astFile})
	ins.WithStack([]ast.Node{(*ast.FuncDecl)(nil), (*ast.GenDecl)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		// declarations at file scope only; the body walker covers the
		// nested ones
		if len(stack) != 2 {
			return true
		}
		switch decl := n.(type) {
		case *ast.FuncDecl:
			ex.funcDecl(decl)
		case *ast.GenDecl:
			ex.genDecl(decl)
		}
		return true
	})
}

func (ex *extractor) genDecl(decl *ast.GenDecl) {
	switch decl.Tok {
	case token.IMPORT:
		for _, spec := range decl.Specs {
			if imp, ok := spec.(*ast.ImportSpec); ok {
				ex.importSpec(imp)
			}
		}
	case token.TYPE:
		for _, spec := range decl.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				ex.typeSpec(ts)
			}
		}
	case token.VAR, token.CONST:
		for _, spec := range decl.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok {
				ex.valueSpec(vs, decl.Tok == token.CONST)
			}
		}
	}
}

func (ex *extractor) importSpec(imp *ast.ImportSpec) {
	path, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		path = strings.Trim(imp.Path.Value, `"`)
	}
	info := &ImportInfo{Path: path}
	if imp.Name != nil {
		switch imp.Name.Name {
		case ".":
			info.Dot = true
		case "_":
			info.Blank = true
		default:
			info.Alias = imp.Name.Name
		}
	}
	ex.add(&Unit{
		Kind:   KindImport,
		Name:   path,
		Pos:    ex.pos(imp.Pos()),
		End:    ex.pos(imp.End()),
		Import: info,
	})
}

var syncPrimitives = map[string]bool{
	"sync.Mutex":     true,
	"sync.RWMutex":   true,
	"sync.WaitGroup": true,
	"sync.Once":      true,
	"sync.Cond":      true,
}

func (ex *extractor) typeSpec(ts *ast.TypeSpec) {
	name := ts.Name.Name
	switch t := ts.Type.(type) {
	case *ast.InterfaceType:
		info := &InterfaceInfo{Name: name, Exported: ast.IsExported(name)}
		if t.Methods != nil {
			for _, field := range t.Methods.List {
				if len(field.Names) > 0 {
					for _, methodName := range field.Names {
						info.Methods = append(info.Methods, methodName.Name)
					}
				} else {
					info.Embeds = append(info.Embeds, types.ExprString(field.Type))
				}
			}
		}
		ex.add(&Unit{
			Kind:      KindInterface,
			Name:      name,
			Pos:       ex.pos(ts.Pos()),
			End:       ex.pos(ts.End()),
			Interface: info,
		})
	case *ast.StructType:
		info := &TypeInfo{Name: name, Exported: ast.IsExported(name), IsStruct: true}
		if t.Fields != nil {
			for _, field := range t.Fields.List {
				fieldType := types.ExprString(field.Type)
				if !syncPrimitives[fieldType] {
					continue
				}
				if len(field.Names) == 0 {
					// embedded field; its name is the bare type name
					info.SyncFields = append(info.SyncFields, fieldType[strings.Index(fieldType, ".")+1:])
					continue
				}
				for _, fieldName := range field.Names {
					info.SyncFields = append(info.SyncFields, fieldName.Name)
				}
			}
		}
		ex.add(&Unit{
			Kind: KindType,
			Name: name,
			Pos:  ex.pos(ts.Pos()),
			End:  ex.pos(ts.End()),
			Type: info,
		})
	default:
		ex.add(&Unit{
			Kind: KindType,
			Name: name,
			Pos:  ex.pos(ts.Pos()),
			End:  ex.pos(ts.End()),
			Type: &TypeInfo{Name: name, Exported: ast.IsExported(name)},
		})
	}
}

func (ex *extractor) valueSpec(vs *ast.ValueSpec, isConst bool) {
	info := &VarInfo{Const: isConst, InTestFile: ex.isTestFile}
	for _, ident := range vs.Names {
		info.Names = append(info.Names, ident.Name)
		if ast.IsExported(ident.Name) {
			info.Exported = true
		}
	}
	for _, value := range vs.Values {
		call, ok := value.(*ast.CallExpr)
		if !ok {
			continue
		}
		switch calleeString(call.Fun) {
		case "errors.New", "fmt.Errorf":
			info.IsSentinel = true
		}
	}
	name := ""
	if len(info.Names) > 0 {
		name = info.Names[0]
	}
	ex.add(&Unit{
		Kind: KindVar,
		Name: name,
		Pos:  ex.pos(vs.Pos()),
		End:  ex.pos(vs.End()),
		Var:  info,
	})
}

func (ex *extractor) funcDecl(decl *ast.FuncDecl) {
	info := &FuncInfo{
		Name:       decl.Name.Name,
		Exported:   ast.IsExported(decl.Name.Name),
		InTestFile: ex.isTestFile,
	}
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		info.Recv = recvInfo(decl.Recv.List[0])
	}
	if decl.Type.Params != nil {
		for _, field := range decl.Type.Params.List {
			paramType := types.ExprString(field.Type)
			if len(field.Names) == 0 {
				info.Params = append(info.Params, Param{Type: paramType})
				continue
			}
			for _, ident := range field.Names {
				info.Params = append(info.Params, Param{Name: ident.Name, Type: paramType})
			}
		}
	}
	if decl.Type.Results != nil {
		for _, field := range decl.Type.Results.List {
			resultType := types.ExprString(field.Type)
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				info.Results = append(info.Results, resultType)
			}
		}
	}
	info.IsInit = decl.Recv == nil && decl.Name.Name == "init"
	info.IsTest = ex.isTestFile && decl.Recv == nil &&
		strings.HasPrefix(decl.Name.Name, "Test") && hasParamType(info.Params, "*testing.T")
	info.IsBenchmark = ex.isTestFile && decl.Recv == nil &&
		strings.HasPrefix(decl.Name.Name, "Benchmark") && hasParamType(info.Params, "*testing.B")
	if decl.Body != nil {
		info.BodyLines = ex.bodyLines(decl.Body)
		info.MaxNesting = nestingDepth(decl.Body)
	}
	ex.add(&Unit{
		Kind: KindFunc,
		Name: info.Name,
		Pos:  ex.pos(decl.Pos()),
		End:  ex.pos(decl.End()),
		Func: info,
	})
	if decl.Body != nil {
		ex.walkBody(decl.Body, info)
	}
}

func recvInfo(field *ast.Field) *RecvInfo {
	info := &RecvInfo{}
	if len(field.Names) > 0 {
		info.Name = field.Names[0].Name
	}
	recvType := field.Type
	if star, ok := recvType.(*ast.StarExpr); ok {
		info.Pointer = true
		recvType = star.X
	}
	// generic receivers keep the base name, not the type arguments
	switch t := recvType.(type) {
	case *ast.Ident:
		info.Type = t.Name
	case *ast.IndexExpr:
		info.Type = types.ExprString(t.X)
	case *ast.IndexListExpr:
		info.Type = types.ExprString(t.X)
	default:
		info.Type = types.ExprString(recvType)
	}
	return info
}

func hasParamType(params []Param, typeName string) bool {
	for _, p := range params {
		if p.Type == typeName {
			return true
		}
	}
	return false
}

func (ex *extractor) bodyLines(body *ast.BlockStmt) int {
	start := ex.fset.Position(body.Lbrace).Line
	end := ex.fset.Position(body.Rbrace).Line
	if end <= start {
		return 0
	}
	return end - start - 1
}

// calleeString renders a call target like "time.Sleep" or "panic".
func calleeString(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return types.ExprString(f)
	case *ast.ParenExpr:
		return calleeString(f.X)
	}
	return ""
}
