package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"
)

// TypeDecl is one type declaration annotated with a swaplock:wrap directive.
type TypeDecl struct {
	Name    string
	Package string
	Variant Variant

	// Source is the printed declaration, used to fingerprint generated
	// wrappers against the declaration they were generated from.
	Source string
}

// Variant selects which wrapper forms to generate for a type.
type Variant string

const (
	VariantLockless Variant = "lockless"
	VariantSync     Variant = "sync"
	VariantBoth     Variant = "both"
)

func (v Variant) valid() bool {
	switch v {
	case VariantLockless, VariantSync, VariantBoth:
		return true
	}
	return false
}

// ParseFile scans a Go source file for type declarations annotated with a
// //swaplock:wrap directive and returns one TypeDecl per annotated type.
func ParseFile(path string) ([]TypeDecl, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("swaplock: parse %s: %w", path, err)
	}

	pkg := f.Name.Name
	var decls []TypeDecl

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		variant, found, err := findDirective(f, fset, gen)
		if err != nil {
			return nil, fmt.Errorf("swaplock: %s: %w", path, err)
		}
		if !found {
			continue
		}

		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if ts.TypeParams != nil {
				return nil, fmt.Errorf("swaplock: type %s: generic types cannot be wrapped", ts.Name.Name)
			}

			src, err := printDecl(fset, ts)
			if err != nil {
				return nil, fmt.Errorf("swaplock: type %s: %w", ts.Name.Name, err)
			}

			decls = append(decls, TypeDecl{
				Name:    ts.Name.Name,
				Package: pkg,
				Variant: variant,
				Source:  src,
			})
		}
	}

	return decls, nil
}

// findDirective looks for a swaplock:wrap directive in the declaration's doc
// group, or in a comment group ending on the line directly above it.
func findDirective(f *ast.File, fset *token.FileSet, gen *ast.GenDecl) (Variant, bool, error) {
	if gen.Doc != nil {
		for _, c := range gen.Doc.List {
			if v, ok, err := parseDirective(c.Text); ok || err != nil {
				return v, ok, err
			}
		}
	}

	declLine := fset.Position(gen.Pos()).Line
	for _, cg := range f.Comments {
		endLine := fset.Position(cg.End()).Line
		if endLine == declLine-1 || endLine == declLine {
			for _, c := range cg.List {
				if v, ok, err := parseDirective(c.Text); ok || err != nil {
					return v, ok, err
				}
			}
		}
	}

	return "", false, nil
}

func parseDirective(text string) (Variant, bool, error) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)
	if text != "swaplock:wrap" && !strings.HasPrefix(text, "swaplock:wrap ") {
		return "", false, nil
	}

	variant := VariantBoth
	for _, p := range strings.Fields(text)[1:] {
		switch {
		case strings.HasPrefix(p, "variant="):
			variant = Variant(strings.TrimPrefix(p, "variant="))
			if !variant.valid() {
				return "", false, fmt.Errorf("invalid variant %q in %q", variant, text)
			}
		default:
			return "", false, fmt.Errorf("unknown directive option %q in %q", p, text)
		}
	}
	return variant, true, nil
}

func printDecl(fset *token.FileSet, ts *ast.TypeSpec) (string, error) {
	var sb strings.Builder
	if err := printer.Fprint(&sb, fset, ts); err != nil {
		return "", err
	}
	return sb.String(), nil
}
