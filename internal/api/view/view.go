// Package view renders the embedded HTML templates. Every page shares the
// base layout; handlers pass a Data value and never touch templates directly.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"contactdesk/internal/api/session"
	"contactdesk/internal/domain/model"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{"login.html", "index.html", "update.html", "404.html", "500.html"}

type View struct {
	pages map[string]*template.Template
}

func New() (*View, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(files, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return &View{pages: pages}, nil
}

// Data carries everything a page can reference. Unused fields stay zero.
type Data struct {
	Title     string
	CSRFToken string
	Flashes   []session.Flash
	Form      interface{}
	Contacts  []model.Contact
	Contact   *model.Contact
}

func (v *View) Render(w http.ResponseWriter, status int, page string, data Data) {
	t, ok := v.pages[page]
	if !ok {
		log.Printf("view: no template %q", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Render into a buffer first so a template failure never leaks half a
	// page with a 200 status.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("view: render %q: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (v *View) NotFound(w http.ResponseWriter) {
	v.Render(w, http.StatusNotFound, "404.html", Data{Title: "Page not found"})
}

func (v *View) ServerError(w http.ResponseWriter) {
	v.Render(w, http.StatusInternalServerError, "500.html", Data{Title: "Something went wrong"})
}
