package codegen

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed template/*.tmpl
var templateDir embed.FS

var defaultFuncMap = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

var templates *Template

type Template struct {
	*template.Template
	FuncMap template.FuncMap
}

func initTemplates() {
	templates = MustParse(NewTemplate("swaplock").ParseFS(templateDir, "template/*.tmpl"))
}

func NewTemplate(name string) *Template {
	t := &Template{Template: template.New(name)}
	return t.Funcs(defaultFuncMap)
}

func (t *Template) Funcs(funcMap template.FuncMap) *Template {
	t.Template.Funcs(funcMap)
	if t.FuncMap == nil {
		t.FuncMap = template.FuncMap{}
	}
	for name, f := range funcMap {
		if _, ok := t.FuncMap[name]; !ok {
			t.FuncMap[name] = f
		}
	}
	return t
}

func MustParse(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) ParseFS(fsys fs.FS, patterns ...string) (*Template, error) {
	if _, err := t.Template.ParseFS(fsys, patterns...); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) Parse(text string) (*Template, error) {
	if _, err := t.Template.Parse(text); err != nil {
		return nil, err
	}
	return t, nil
}
