package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/CreditWorthy/swaplock/internal/codegen"
)

var exitFunc = os.Exit
var stderr io.Writer = os.Stderr

func main() {
	input := flag.String("input", "", "Go source file containing swaplock:wrap-annotated types")
	output := flag.String("output", "", "Output directory (default: same directory as input)")
	variant := flag.String("variant", "", "Restrict generation to one wrapper form: lockless or sync")
	configPath := flag.String("config", "", "Config file (default: swaplock.yaml next to input, if present)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(stderr, "swaplock-gen: -input flag is required")
		exitFunc(1)
		return
	}

	if err := run(*input, *output, *variant, *configPath); err != nil {
		fmt.Fprintf(stderr, "swaplock-gen: %v\n", err)
		exitFunc(1)
		return
	}
}

func run(inputPath, outputDir, variant, configPath string) error {
	decls, err := codegen.ParseFile(inputPath)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("no swaplock:wrap directives found in %s", inputPath)
	}

	if configPath == "" {
		configPath = filepath.Join(filepath.Dir(inputPath), codegen.ConfigFile)
	}
	cfg, err := codegen.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if outputDir != "" {
		cfg.Target = outputDir
	}
	if cfg.Target == "" {
		cfg.Target = filepath.Dir(inputPath)
	}
	if variant != "" {
		cfg.Variant = codegen.Variant(variant)
		if cfg.Variant != codegen.VariantLockless && cfg.Variant != codegen.VariantSync {
			return fmt.Errorf("invalid -variant %q", variant)
		}
	}
	if cfg.ImportPath == "" {
		importPath, err := resolveImportPath(inputPath)
		if err != nil {
			return err
		}
		cfg.ImportPath = importPath
	}

	g, err := codegen.NewGraph(cfg, decls)
	if err != nil {
		return err
	}
	if err := g.Gen(); err != nil {
		return err
	}

	for _, n := range g.Nodes {
		fmt.Fprintf(stderr, "swaplock-gen: %s → %s (%s, %s)\n",
			n.Name, filepath.Join(cfg.Target, n.Label()+"_swaplock.go"), n.Variant, n.Fingerprint())
	}

	return nil
}

// resolveImportPath checks the module enclosing the input file. Generating
// inside the library itself imports by the module's own path; elsewhere the
// module must require the library. Without a go.mod the default path is used
// and the build surfaces any mismatch.
func resolveImportPath(inputPath string) (string, error) {
	modPath, err := findModfile(filepath.Dir(inputPath))
	if errors.Is(err, fs.ErrNotExist) {
		return codegen.DefaultImportPath, nil
	}
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(modPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", modPath, err)
	}
	mf, err := modfile.Parse(modPath, raw, nil)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", modPath, err)
	}

	if mf.Module != nil && mf.Module.Mod.Path == codegen.DefaultImportPath {
		return codegen.DefaultImportPath, nil
	}
	for _, r := range mf.Require {
		if r.Mod.Path == codegen.DefaultImportPath {
			return codegen.DefaultImportPath, nil
		}
	}
	name := "(unnamed module)"
	if mf.Module != nil {
		name = mf.Module.Mod.Path
	}
	return "", fmt.Errorf("module %s does not require %s; add the dependency or set import_path in %s",
		name, codegen.DefaultImportPath, codegen.ConfigFile)
}

func findModfile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fs.ErrNotExist
		}
		dir = parent
	}
}
