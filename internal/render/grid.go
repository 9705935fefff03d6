// Package render turns the cached project list and the current filter into
// the card set the grid shows. Everything here is a pure function.
package render

import (
	"dconn.dev/projectgrid/internal/models"
)

const (
	// EmptyNoProjects is shown when the cached list itself is empty
	EmptyNoProjects = "No hay proyectos disponibles."
	// EmptyNoMatches is shown when the filter leaves nothing
	EmptyNoMatches = "No hay proyectos de este tipo."
	// LoadFailed replaces the grid when the list could not be fetched
	LoadFailed = "Error al cargar los proyectos. Asegúrate de que el servidor esté ejecutándose."

	genericLabel = "Proyecto"
)

var labels = map[models.ProjectType]string{
	models.TypePython: "Python",
	models.TypeVideo:  "Video",
	models.TypeMusica: "Música",
	models.TypeJuego:  "Juego",
}

// Card is one project as the grid displays it
type Card struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	UploadDate  string `json:"uploadDate"`
}

// View is the rendered grid. Exactly one of Cards or Empty is set.
type View struct {
	Filter models.Filter `json:"filter"`
	Cards  []Card        `json:"cards"`
	Empty  string        `json:"empty,omitempty"`
}

// Label returns the display label for a project type; unknown types get the
// generic label.
func Label(t models.ProjectType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return genericLabel
}

// Select returns the projects passing filter, preserving order
func Select(projects []models.Project, filter models.Filter) []models.Project {
	if filter == models.FilterAll {
		return projects
	}
	var out []models.Project
	for _, p := range projects {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Grid renders projects under filter. dateLayout is a time layout for the
// upload date.
func Grid(projects []models.Project, filter models.Filter, dateLayout string) View {
	view := View{Filter: filter, Cards: []Card{}}

	if len(projects) == 0 {
		view.Empty = EmptyNoProjects
		return view
	}

	selected := Select(projects, filter)
	if len(selected) == 0 {
		view.Empty = EmptyNoMatches
		return view
	}

	for _, p := range selected {
		view.Cards = append(view.Cards, NewCard(p, dateLayout))
	}
	return view
}

// NewCard builds the card for a single project
func NewCard(p models.Project, dateLayout string) Card {
	return Card{
		ID:          p.ID,
		Label:       Label(p.Type),
		Title:       p.Title,
		Type:        string(p.Type),
		Description: p.Description,
		UploadDate:  FormatDate(p, dateLayout),
	}
}

// FormatDate formats the upload date in the local zone, falling back to the
// raw value when it cannot be parsed.
func FormatDate(p models.Project, layout string) string {
	t, ok := p.UploadedAt()
	if !ok {
		return p.UploadDate
	}
	return t.Local().Format(layout)
}
