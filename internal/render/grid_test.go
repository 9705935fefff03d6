package render

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dconn.dev/projectgrid/internal/models"
)

func project(id string, t models.ProjectType) models.Project {
	return models.Project{
		ID:          id,
		Title:       "Project " + id,
		Description: "desc " + id,
		Type:        t,
		UploadDate:  "2024-03-05T10:00:00Z",
	}
}

func TestGrid_FilterVideo(t *testing.T) {
	list := []models.Project{project("1", models.TypePython), project("2", models.TypeVideo)}

	view := Grid(list, models.Filter("video"), "2006-01-02")

	require.Len(t, view.Cards, 1)
	assert.Equal(t, "2", view.Cards[0].ID)
	assert.Equal(t, "Video", view.Cards[0].Label)
	assert.Empty(t, view.Empty)
}

func TestGrid_EmptyStates(t *testing.T) {
	view := Grid(nil, models.FilterAll, "2006-01-02")
	assert.Empty(t, view.Cards)
	assert.Equal(t, EmptyNoProjects, view.Empty)

	list := []models.Project{project("1", models.TypePython)}
	view = Grid(list, models.Filter("juego"), "2006-01-02")
	assert.Empty(t, view.Cards)
	assert.Equal(t, EmptyNoMatches, view.Empty)
}

// The rendered set is L under "all" and {p in L : p.type == f} otherwise.
func TestSelect_Property(t *testing.T) {
	types := append([]models.ProjectType{"unknown"}, models.KnownTypes...)
	filters := []models.Filter{models.FilterAll, "unknown", "nope"}
	for _, k := range models.KnownTypes {
		filters = append(filters, models.Filter(k))
	}

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		n := r.IntN(12)
		list := make([]models.Project, n)
		for j := range list {
			list[j] = project(fmt.Sprint(j), types[r.IntN(len(types))])
		}

		for _, f := range filters {
			got := Select(list, f)
			if f == models.FilterAll {
				assert.Equal(t, list, got)
				continue
			}
			var want []models.Project
			for _, p := range list {
				if string(p.Type) == string(f) {
					want = append(want, p)
				}
			}
			assert.Equal(t, want, got, "filter %q", f)

			view := Grid(list, f, time.RFC3339)
			assert.Len(t, view.Cards, len(want))
			assert.Equal(t, len(want) == 0, view.Empty != "")
		}
	}
}

func TestLabel(t *testing.T) {
	tests := map[models.ProjectType]string{
		models.TypePython: "Python",
		models.TypeVideo:  "Video",
		models.TypeMusica: "Música",
		models.TypeJuego:  "Juego",
		models.TypeOther:  "Proyecto",
		"something-else":  "Proyecto",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), "type %q", in)
	}
}

func TestFormatDate(t *testing.T) {
	p := models.Project{UploadDate: "2024-03-05T10:00:00Z"}
	want := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC).Local().Format("02/01/2006")
	assert.Equal(t, want, FormatDate(p, "02/01/2006"))

	assert.Equal(t, "ayer", FormatDate(models.Project{UploadDate: "ayer"}, "02/01/2006"))
}

func TestFilters(t *testing.T) {
	buttons := Filters(models.Filter("video"))
	require.Len(t, buttons, len(models.KnownTypes)+1)
	assert.Equal(t, "all", buttons[0].Value)
	assert.Equal(t, "Todos", buttons[0].Label)

	var active []string
	for _, b := range buttons {
		if b.Active {
			active = append(active, b.Value)
		}
	}
	assert.Equal(t, []string{"video"}, active)
}

func TestFileInfo(t *testing.T) {
	assert.Equal(t, "Archivo: a.zip (0 B)", FileInfo("a.zip", 0))
	assert.Equal(t, "Archivo: a.zip (1.5 KiB)", FileInfo("a.zip", 1536))
	assert.Empty(t, FileInfo("", 10))
}

func TestTypeOptions(t *testing.T) {
	opts := TypeOptions("musica")
	require.Len(t, opts, len(models.KnownTypes))
	for _, o := range opts {
		assert.Equal(t, o.Value == "musica", o.Selected, o.Value)
		assert.NotEmpty(t, o.Label)
	}
}

func TestTypeOptions_UnknownDraftTypeKept(t *testing.T) {
	opts := TypeOptions("cad")
	require.Len(t, opts, len(models.KnownTypes)+1)

	last := opts[len(opts)-1]
	assert.Equal(t, TypeOption{Value: "cad", Label: "Proyecto", Selected: true}, last)
	for _, o := range opts[:len(opts)-1] {
		assert.False(t, o.Selected)
	}

	assert.Len(t, TypeOptions(""), len(models.KnownTypes))
}
