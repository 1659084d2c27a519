package codegen

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Type is a single wrapped type declaration — the unit the per-type
// templates render.
type Type struct {
	*Config

	// Name is the Go type name from the input file.
	Name string

	// Package is the Go package name for the generated file.
	Package string

	// Variant selects which wrapper forms this type gets.
	Variant Variant

	// Source is the printed type declaration the wrappers were generated
	// from, used for the staleness fingerprint.
	Source string
}

// Header returns the file header for generated code.
func (t *Type) Header() string {
	return t.Config.header()
}

// ImportPath returns the library import path for generated code.
func (t *Type) ImportPath() string {
	return t.Config.importPath()
}

// Label returns the lowercase name of the type, used in file names.
func (t *Type) Label() string {
	return strings.ToLower(t.Name)
}

// Fingerprint is a hash of the source declaration, embedded in the generated
// file so a wrapper can be recognized as stale after the declaration changes.
func (t *Type) Fingerprint() string {
	return fmt.Sprintf("xxh64:%016x", xxhash.Sum64String(t.Source))
}

// HandleName returns the generated lockless handle type name.
func (t *Type) HandleName() string {
	return t.Name + "Handle"
}

// LockName returns the generated shared-handle type name.
func (t *Type) LockName() string {
	return t.Name + "Lock"
}

// ReadGuardName returns the generated read guard type name.
func (t *Type) ReadGuardName() string {
	return t.Name + "ReadGuard"
}

// WriteGuardName returns the generated write guard type name.
func (t *Type) WriteGuardName() string {
	return t.Name + "WriteGuard"
}

// NewHandleFuncName returns the lockless constructor name.
func (t *Type) NewHandleFuncName() string {
	return "New" + t.Name + "Handle"
}

// NewLockFuncName returns the shared-handle constructor name.
func (t *Type) NewLockFuncName() string {
	return "New" + t.Name + "Lock"
}

// Lockless reports whether the lockless wrapper form is generated.
func (t *Type) Lockless() bool {
	return t.Variant == VariantLockless || t.Variant == VariantBoth
}

// Sync reports whether the shared-handle wrapper form is generated.
func (t *Type) Sync() bool {
	return t.Variant == VariantSync || t.Variant == VariantBoth
}
