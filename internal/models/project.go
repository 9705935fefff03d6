package models

import (
	"encoding/json"
	"io"
	"strings"
	"time"
)

// ProjectType is the category a project was uploaded under
type ProjectType string

const (
	TypePython ProjectType = "python"
	TypeVideo  ProjectType = "video"
	TypeMusica ProjectType = "musica"
	TypeJuego  ProjectType = "juego"
	TypeOther  ProjectType = "other"
)

// KnownTypes lists the categories in the order the filter bar shows them
var KnownTypes = []ProjectType{TypePython, TypeVideo, TypeMusica, TypeJuego, TypeOther}

// Known reports whether t is one of the enum members
func (t ProjectType) Known() bool {
	for _, k := range KnownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Project represents one uploaded project as returned by the projects API
type Project struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        ProjectType `json:"type"`
	UploadDate  string      `json:"uploadDate"`
	FileRef     string      `json:"fileRef,omitempty"`
}

// UnmarshalJSON accepts the alternative file reference keys some API
// builds emit, and numeric ids.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var aux struct {
		plain
		ID       json.RawMessage `json:"id"`
		Filename string          `json:"filename"`
		FilePath string          `json:"filePath"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Project(aux.plain)
	p.ID = rawID(aux.ID)
	if p.FileRef == "" {
		p.FileRef = aux.Filename
	}
	if p.FileRef == "" {
		p.FileRef = aux.FilePath
	}
	return nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// UploadedAt parses UploadDate. ok is false when the server sent something
// that is not an RFC 3339 timestamp.
func (p Project) UploadedAt() (t time.Time, ok bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, p.UploadDate); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Filter selects which projects the grid shows
type Filter string

// FilterAll is the sentinel that passes every project
const FilterAll Filter = "all"

// ParseFilter normalizes user input; the empty string means all
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll
	}
	return Filter(s)
}

// Matches reports whether p passes the filter
func (f Filter) Matches(p Project) bool {
	return f == FilterAll || string(p.Type) == string(f)
}

// UploadForm is the payload of the project creation form
type UploadForm struct {
	Title       string
	Description string
	Type        string
	FileName    string
	FileSize    int64
	File        io.Reader
}

// HasFile reports whether a file part was actually chosen
func (f UploadForm) HasFile() bool {
	return f.File != nil && (f.FileName != "" || f.FileSize > 0)
}
