// Command genregistry writes models_registry.go for a models package: a map
// from type name to zero value for every struct that owns a table.
//
//	go run ./tools/genregistry ./internal/models
package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const outputName = "models_registry.go"

func main() {
	_ = godotenv.Load()

	var modelsDir string
	if len(os.Args) >= 2 {
		modelsDir = os.Args[1]
	} else {
		modelsDir = os.Getenv("MODELS_PATH")
		if modelsDir == "" {
			fmt.Println("Usage: genregistry <models_dir> OR set MODELS_PATH environment variable")
			os.Exit(1)
		}
	}

	pkg, names, err := scan(modelsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	src, err := render(pkg, names)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outputFile := filepath.Join(modelsDir, outputName)
	if err := os.WriteFile(outputFile, src, 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s with %d models.\n", outputFile, len(names))
}

// scan returns the package name and the table models declared in dir.
func scan(dir string) (string, []string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, err
	}

	var pkg string
	var names []string
	fset := token.NewFileSet()
	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == outputName {
			continue
		}
		node, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return "", nil, err
		}
		pkg = node.Name.Name

		for _, decl := range node.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok || !typeSpec.Name.IsExported() {
					continue
				}
				if st, ok := typeSpec.Type.(*ast.StructType); ok && ownsTable(st) {
					names = append(names, typeSpec.Name.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return pkg, names, nil
}

// ownsTable reports whether a struct has a primary key: an ID field or an
// embedded gorm.Model. Embedded value structs such as profiles have neither.
func ownsTable(st *ast.StructType) bool {
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			if sel, ok := field.Type.(*ast.SelectorExpr); ok && sel.Sel.Name == "Model" {
				return true
			}
			continue
		}
		for _, n := range field.Names {
			if n.Name == "ID" {
				return true
			}
		}
	}
	return false
}

func render(pkg string, names []string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("// Code generated by genregistry. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("// ModelTypeRegistry maps model names to the tables the service owns.\n")
	b.WriteString("var ModelTypeRegistry = map[string]interface{}{\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\t%q: %s{},\n", name, name)
	}
	b.WriteString("}\n")
	return format.Source(b.Bytes())
}
