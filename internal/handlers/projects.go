package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yosssi/gohtml"
	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/config"
	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/models"
	"dconn.dev/projectgrid/internal/render"
	"dconn.dev/projectgrid/internal/services"
	"dconn.dev/projectgrid/internal/session"
	"dconn.dev/projectgrid/internal/status"
	"dconn.dev/projectgrid/internal/web"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files
const multipartMemory = 32 << 20

// ProjectHandler serves the project grid, the detail view and the actions
type ProjectHandler struct {
	projectService *services.ProjectService
	templates      *template.Template
	dateLayout     string
	maxUpload      int64
	prettyHTML     bool
	statusTTL      time.Duration
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(ps *services.ProjectService, tmpl *template.Template, cfg *config.Config) *ProjectHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &ProjectHandler{
		projectService: ps,
		templates:      tmpl,
		dateLayout:     cfg.UI.DateLayout,
		maxUpload:      cfg.Upload.MaxBytes,
		prettyHTML:     cfg.UI.PrettyHTML,
		statusTTL:      cfg.Status.TTL,
	}
}

// page is the data of index.html
type page struct {
	Filter      string
	Filters     []render.FilterButton
	View        render.View
	LoadFailed  bool
	LoadError   string
	Status      status.Message
	Uploading   bool
	Draft       session.Draft
	TypeOptions []render.TypeOption
	Modal       *models.Project
	CloseURL    string
	Alert       string
}

// requestFilter is the filter the page was opened under, carried in the
// query string or in a hidden form field
func requestFilter(r *http.Request) models.Filter {
	return models.ParseFilter(r.FormValue("filter"))
}

// requestSession returns the browser's session. Outside the session
// middleware a throwaway one is used so messages go nowhere.
func (h *ProjectHandler) requestSession(r *http.Request) *session.Session {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess
	}
	return session.New(h.statusTTL)
}

// Index handles GET / - a full page load: shows every project and fetches the list
func (h *ProjectHandler) Index(w http.ResponseWriter, r *http.Request) {
	// a failed load is rendered as the grid error message
	_ = h.projectService.Load(r.Context())
	h.renderPage(w, r, http.StatusOK, models.FilterAll, nil, "")
}

// Filter handles GET /filter/{type} - re-renders the cached list
func (h *ProjectHandler) Filter(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, models.ParseFilter(chi.URLParam(r, "type")), nil, "")
}

// Detail handles GET /projects/{id}?filter= - the grid with the detail dialog open
func (h *ProjectHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filter := requestFilter(r)

	project, err := h.projectService.GetByID(id)
	if err != nil {
		h.renderPage(w, r, http.StatusNotFound, filter, nil, "")
		return
	}

	h.renderPage(w, r, http.StatusOK, filter, project, "")
}

// Upload handles POST /projects
func (h *ProjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	sess := h.requestSession(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.projectService.FailUpload(ctx, sess, err)
		h.backToGrid(w, r, models.ParseFilter(r.URL.Query().Get("filter")))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	filter := requestFilter(r)

	form := models.UploadForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
	}

	file, header, err := r.FormFile("projectFile")
	switch {
	case err == nil:
		defer file.Close()
		form.File = file
		form.FileName = header.Filename
		form.FileSize = header.Size
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart), errors.Is(err, multipart.ErrMessageTooLarge):
		// reported by validation
	default:
		h.projectService.FailUpload(ctx, sess, err)
		h.backToGrid(w, r, filter)
		return
	}

	if err := h.projectService.Upload(ctx, sess, form); err != nil {
		logger.Info(ctx, "upload not completed", zap.Error(err))
	}
	h.backToGrid(w, r, filter)
}

// Download handles GET /projects/{id}/download
func (h *ProjectHandler) Download(w http.ResponseWriter, r *http.Request) {
	target, err := h.projectService.DownloadURL(chi.URLParam(r, "id"))
	if err != nil {
		h.renderPage(w, r, http.StatusBadRequest, requestFilter(r), nil, services.MsgDownloadFailed)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Delete handles POST /projects/{id}/delete. Confirmation happens in the
// browser before the form is submitted.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filter := requestFilter(r)

	err := h.projectService.Delete(r.Context(), id)
	switch {
	case err == nil:
		// closes the dialog
		h.backToGrid(w, r, filter)
	case errors.Is(err, services.ErrNotFound):
		h.renderPage(w, r, http.StatusNotFound, filter, nil, services.MsgDeleteNotFound)
	default:
		project, _ := h.projectService.GetByID(id)
		h.renderPage(w, r, http.StatusBadGateway, filter, project, services.MsgDeleteFailed)
	}
}

// Cards handles GET /api/cards?filter= - the cached list as JSON
func (h *ProjectHandler) Cards(w http.ResponseWriter, r *http.Request) {
	state := h.projectService.Snapshot()
	if state.LoadFailed {
		respondError(w, r, http.StatusBadGateway, render.LoadFailed)
		return
	}
	respondJSON(w, r, http.StatusOK, render.Grid(state.Projects, requestFilter(r), h.dateLayout))
}

// backToGrid redirects to the grid under filter without refetching
func (h *ProjectHandler) backToGrid(w http.ResponseWriter, r *http.Request, filter models.Filter) {
	http.Redirect(w, r, web.FilterURL(string(filter)), http.StatusSeeOther)
}

func (h *ProjectHandler) renderPage(w http.ResponseWriter, r *http.Request, code int, filter models.Filter, modal *models.Project, alert string) {
	ctx := r.Context()
	state := h.projectService.Snapshot()
	sess := h.requestSession(r)
	draft := sess.Draft()

	data := page{
		Filter:      string(filter),
		Filters:     render.Filters(filter),
		View:        render.Grid(state.Projects, filter, h.dateLayout),
		LoadFailed:  state.LoadFailed,
		LoadError:   render.LoadFailed,
		Status:      sess.Status(),
		Uploading:   sess.Uploading(),
		Draft:       draft,
		TypeOptions: render.TypeOptions(draft.Type),
		Modal:       modal,
		CloseURL:    web.FilterURL(string(filter)),
		Alert:       alert,
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logging.FromContext(ctx).Error(ctx, "error executing index template", zap.Error(err))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	body := buf.Bytes()
	if h.prettyHTML {
		body = gohtml.FormatBytes(body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
