package render

import "dconn.dev/projectgrid/internal/models"

// FilterButton is one entry of the filter bar
type FilterButton struct {
	Value  string
	Label  string
	Active bool
}

var filterLabels = map[models.Filter]string{
	models.FilterAll:                  "Todos",
	models.Filter(models.TypePython): "Python",
	models.Filter(models.TypeVideo):  "Video",
	models.Filter(models.TypeMusica): "Música",
	models.Filter(models.TypeJuego):  "Juegos",
	models.Filter(models.TypeOther):  "Otros",
}

// Filters returns the filter bar with the active entry marked
func Filters(active models.Filter) []FilterButton {
	values := make([]models.Filter, 0, len(models.KnownTypes)+1)
	values = append(values, models.FilterAll)
	for _, t := range models.KnownTypes {
		values = append(values, models.Filter(t))
	}

	buttons := make([]FilterButton, 0, len(values))
	for _, v := range values {
		buttons = append(buttons, FilterButton{
			Value:  string(v),
			Label:  filterLabels[v],
			Active: v == active,
		})
	}
	return buttons
}

// TypeOption is one entry of the upload form's type select
type TypeOption struct {
	Value    string
	Label    string
	Selected bool
}

// TypeOptions lists the known types with selected preselected. A selected
// value outside the enum is kept as an extra option so a draft is not lost.
func TypeOptions(selected string) []TypeOption {
	opts := make([]TypeOption, 0, len(models.KnownTypes)+1)
	for _, t := range models.KnownTypes {
		opts = append(opts, TypeOption{
			Value:    string(t),
			Label:    filterLabels[models.Filter(t)],
			Selected: string(t) == selected,
		})
	}
	if selected != "" && !models.ProjectType(selected).Known() {
		opts = append(opts, TypeOption{Value: selected, Label: genericLabel, Selected: true})
	}
	return opts
}
