package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dconn.dev/projectgrid/internal/apiclient"
	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/metrics"
	"dconn.dev/projectgrid/internal/models"
	"dconn.dev/projectgrid/internal/render"
	"dconn.dev/projectgrid/internal/session"
	"dconn.dev/projectgrid/internal/status"
)

// User-facing messages
const (
	MsgMissingFields    = "Por favor, completa todos los campos"
	MsgUploadFailed     = "Error al subir el proyecto"
	MsgUploadSucceeded  = "Proyecto subido correctamente"
	MsgUploadInProgress = "Ya hay una subida en curso, espera a que termine"
	MsgDeleteFailed     = "Error al eliminar el proyecto"
	MsgDeleteNotFound   = "El proyecto ya no existe"
	MsgDownloadFailed   = "Error al descargar el proyecto"
)

var (
	// ErrNotFound is returned for ids the cache or the API does not know
	ErrNotFound = errors.New("project not found")
	// ErrUploadInProgress rejects a second submission while one is in flight
	ErrUploadInProgress = errors.New("upload already in progress")
)

// ValidationError lists the required upload fields that were missing
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Store is the projects API as the service needs it
type Store interface {
	List(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, form models.UploadForm) (string, error)
	Delete(ctx context.Context, id string) error
	DownloadURL(id string) string
}

// State is a consistent view of the shared cache for rendering
type State struct {
	Projects   []models.Project
	LoadFailed bool
}

// ProjectService owns the cached project list shared by every client. Page
// state that belongs to one browser lives in its session.Session. The full
// list is re-fetched after every successful mutation.
type ProjectService struct {
	store   Store
	logger  *logging.Logger
	metrics *metrics.Metrics

	mu         sync.RWMutex
	projects   []models.Project
	loadFailed bool
}

// NewProjectService creates a new ProjectService
func NewProjectService(store Store, logger *logging.Logger, m *metrics.Metrics) *ProjectService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProjectService{
		store:    store,
		logger:   logger.Named("projects"),
		metrics:  m,
		projects: []models.Project{},
	}
}

// Load fetches the full list. On success the cache is replaced; on failure
// the cache is kept but the view is marked failed until the next success.
// Overlapping loads are not coordinated: whichever completes last wins.
func (s *ProjectService) Load(ctx context.Context) error {
	projects, err := s.store.List(ctx)
	if err != nil {
		s.mu.Lock()
		s.loadFailed = true
		s.mu.Unlock()
		s.logger.Error(ctx, "failed to load projects", zap.Error(err))
		return fmt.Errorf("load projects: %w", err)
	}

	s.mu.Lock()
	s.projects = projects
	s.loadFailed = false
	s.mu.Unlock()

	s.metrics.SetCached(len(projects))
	if s.logger.Enabled(zapcore.DebugLevel) {
		ids := make([]string, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		s.logger.Debug(ctx, "projects loaded", zap.Int("count", len(projects)), zap.Strings("ids", ids))
	}
	return nil
}

// Snapshot returns the cached list and load state together
func (s *ProjectService) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Projects: s.projects, LoadFailed: s.loadFailed}
}

// GetByID returns a specific project from the cache
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Validate checks that every required upload field is present. Presence
// only: whitespace counts as a value, the API decides what it accepts.
func Validate(form models.UploadForm) error {
	var missing []string
	if form.Title == "" {
		missing = append(missing, "title")
	}
	if form.Description == "" {
		missing = append(missing, "description")
	}
	if form.Type == "" {
		missing = append(missing, "type")
	}
	if !form.HasFile() {
		missing = append(missing, "projectFile")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Upload validates form, submits it and reloads the list on success. The
// outcome is always reported on sess's banner, and a rejected form is kept
// as sess's draft.
func (s *ProjectService) Upload(ctx context.Context, sess *session.Session, form models.UploadForm) error {
	if err := Validate(form); err != nil {
		keepDraft(sess, form)
		sess.Show(MsgMissingFields, status.Error)
		s.metrics.RecordUpload("invalid")
		return err
	}

	if !sess.BeginUpload() {
		keepDraft(sess, form)
		sess.Show(MsgUploadInProgress, status.Error)
		s.metrics.RecordUpload("busy")
		return ErrUploadInProgress
	}
	defer sess.EndUpload()

	msg, err := s.store.Create(ctx, form)
	if err != nil {
		keepDraft(sess, form)
		text := apiclient.ServerMessage(err)
		if text == "" {
			text = MsgUploadFailed
		}
		sess.Show(text, status.Error)
		s.metrics.RecordUpload("failed")
		s.logger.Error(ctx, "upload failed", zap.String("title", form.Title), zap.Error(err))
		return fmt.Errorf("upload project: %w", err)
	}

	sess.SetDraft(session.Draft{})
	if msg == "" {
		msg = MsgUploadSucceeded
	}
	sess.Show(msg, status.Success)
	s.metrics.RecordUpload("ok")
	s.logger.Info(ctx, "project uploaded", zap.String("title", form.Title), zap.String("type", form.Type))

	// a failed reload is shown in the grid, the upload itself succeeded
	_ = s.Load(ctx)
	return nil
}

func keepDraft(sess *session.Session, form models.UploadForm) {
	d := session.Draft{Title: form.Title, Description: form.Description, Type: form.Type}
	if form.HasFile() {
		d.FileInfo = render.FileInfo(form.FileName, form.FileSize)
	}
	sess.SetDraft(d)
}

// FailUpload reports an upload that could not even be read from the request
func (s *ProjectService) FailUpload(ctx context.Context, sess *session.Session, err error) {
	sess.Show(MsgUploadFailed, status.Error)
	s.metrics.RecordUpload("failed")
	s.logger.Warn(ctx, "unreadable upload request", zap.Error(err))
}

// Delete removes a project and reloads the list on success. A project the
// API no longer has also triggers one reload, since the cache is stale, and
// the error wraps ErrNotFound.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete project: %w", ErrNotFound)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if apiclient.IsNotFound(err) {
			s.logger.Warn(ctx, "project already gone", zap.String("id", id))
			_ = s.Load(ctx)
			return fmt.Errorf("delete project %s: %w: %w", id, ErrNotFound, err)
		}
		s.logger.Error(ctx, "delete failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	s.logger.Info(ctx, "project deleted", zap.String("id", id))
	_ = s.Load(ctx)
	return nil
}

// DownloadURL returns the API download endpoint for id. Whether the download
// then succeeds is not observable from here.
func (s *ProjectService) DownloadURL(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("download project: %w", ErrNotFound)
	}
	return s.store.DownloadURL(id), nil
}
