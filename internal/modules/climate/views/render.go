package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var indexTmpl *template.Template

// loadTemplatesFromFS parses every *.html under dir. Tests use it to
// simulate failures.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	if tmpl.Lookup("index.html") == nil {
		return errors.New("index.html template missing")
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call it during startup before
// serving requests; if it fails, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model for the welcome page.
type IndexData struct {
	Routes []string
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
