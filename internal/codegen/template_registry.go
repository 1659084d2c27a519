package codegen

// TypeTemplate is executed once per Type node.
type TypeTemplate struct {
	Name   string             // matches a {{ define "name" }} in a .tmpl file
	Cond   func(*Type) bool   // optional: skip if returns false
	Format func(*Type) string // output file name
}

// TypeTemplates is the list of per-type templates to execute.
var TypeTemplates = []TypeTemplate{
	{
		Name: "wrapper",
		Format: func(t *Type) string {
			return t.Label() + "_swaplock.go"
		},
	},
}
