// Package view renders the embedded HTML pages through echo's Renderer.
package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/membership-site/web"
)

// Page names understood by Engine.Render.
const (
	PageIndex       = "index"
	PageSignup      = "signup"
	PageLogin       = "login"
	PageMembers     = "members"
	PageAdmin       = "admin"
	PageConfirmRole = "confirm_role"
	PageError       = "error"
)

// FormValues echoes user input back into a re-rendered form. Passwords are
// never echoed.
type FormValues struct {
	Name  string
	Email string
}

// Page is the view-model shared by every template.
type Page struct {
	Title   string
	Name    string
	IsAdmin bool
	Error   string
	CSRF    string
	Form    FormValues
	Data    any
}

// Engine holds one template set per page, each sharing the layouts.
type Engine struct {
	pages map[string]*template.Template
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return NewEngineFS(web.Templates)
}

// NewEngineFS parses templates/layouts/*.html once and clones them for every
// templates/pages/*.html file.
func NewEngineFS(fsys fs.FS) (*Engine, error) {
	base, err := template.New("root").ParseFS(fsys, "templates/layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		tpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts: %w", err)
		}
		if _, err := tpl.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = tpl
	}
	return &Engine{pages: pages}, nil
}

// Render implements echo.Renderer.
func (e *Engine) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tpl.ExecuteTemplate(w, "layout", data)
}
