package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// loadTemplates parses each page together with base.tmpl. An empty dir uses
// the templates compiled into the binary.
func loadTemplates(dir string) (map[string]*template.Template, error) {
	var fsys fs.FS = embeddedTemplates
	root := "templates"
	if strings.TrimSpace(dir) != "" {
		fsys = os.DirFS(dir)
		root = "."
	}

	funcs := template.FuncMap{
		"lower": strings.ToLower,
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"login", "home"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, root+"/base.tmpl", root+"/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
