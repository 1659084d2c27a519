package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
)

type Generator interface {
	Generate(*Graph) error
}

// GenerateFunc adapts an ordinary function to the Generator interface.
type GenerateFunc func(*Graph) error

// Generate calls f(g).
func (f GenerateFunc) Generate(g *Graph) error { return f(g) }

type Hook func(Generator) Generator

type Graph struct {
	*Config

	Nodes []*Type
}

func NewGraph(c *Config, decls []TypeDecl) (*Graph, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("swaplock: codegen: target directory is required")
	}

	g := &Graph{
		Config: c,
		Nodes:  make([]*Type, 0, len(decls)),
	}

	for _, d := range decls {
		pkg := d.Package
		if c.Package != "" {
			pkg = c.Package
		}
		variant := d.Variant
		if c.Variant != "" && variant == VariantBoth {
			variant = c.Variant
		}
		g.Nodes = append(g.Nodes, &Type{
			Config:  c,
			Name:    d.Name,
			Package: pkg,
			Variant: variant,
			Source:  d.Source,
		})
	}

	return g, nil
}

func (g *Graph) Gen() error {
	var gen Generator = GenerateFunc(generate)
	for i := len(g.Hooks) - 1; i >= 0; i-- {
		gen = g.Hooks[i](gen)
	}
	return gen.Generate(g)
}

func generate(g *Graph) error {
	if err := os.MkdirAll(g.Target, os.ModePerm); err != nil {
		return fmt.Errorf("swaplock: create target dir: %w", err)
	}

	initTemplates()

	for _, node := range g.Nodes {
		for _, tt := range TypeTemplates {
			if tt.Cond != nil && !tt.Cond(node) {
				continue
			}
			if err := renderType(node, tt); err != nil {
				return err
			}
		}
	}

	return nil
}

func renderType(node *Type, tt TypeTemplate) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tt.Name, node); err != nil {
		return fmt.Errorf("swaplock: render %s for %s: %w", tt.Name, node.Name, err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("swaplock: format output for %s: %w", node.Name, err)
	}

	out := filepath.Join(node.Target, tt.Format(node))
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("swaplock: write %s: %w", out, err)
	}
	return nil
}
