// Package web embeds the HTML templates and static assets of the frontend.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"filterURL":  FilterURL,
		"projectURL": ProjectURL,
		"detailURL":  DetailURL,
	}
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}

// FilterURL is the grid under filter f. It renders from the cached list
// without refetching, unlike "/".
func FilterURL(f string) string {
	if f == "" {
		f = "all"
	}
	return "/filter/" + url.PathEscape(f)
}

// ProjectURL is the base path of project id's routes
func ProjectURL(id string) string {
	return "/projects/" + url.PathEscape(id)
}

// DetailURL opens the detail dialog of id over the grid under filter f
func DetailURL(id, f string) string {
	if f == "" {
		f = "all"
	}
	return ProjectURL(id) + "?" + url.Values{"filter": {f}}.Encode()
}

// Static returns the static asset tree rooted at static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: static assets missing: " + err.Error())
	}
	return sub
}
