package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hyprtext/internal/controller"
	"github.com/starford/hyprtext/internal/history"
	"github.com/starford/hyprtext/internal/preview"
)

// Handler holds API route handlers.
type Handler struct {
	exec controller.Executor
}

// NewHandler creates a new Handler.
func NewHandler(exec controller.Executor) *Handler {
	return &Handler{exec: exec}
}

// documentID parses the {id} URL parameter. "active" addresses the active
// document.
func documentID(r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "active" {
		return controller.Active, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) withID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := documentID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
	}
	return id, ok
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List open documents, optionally fuzzy-filtered
//	@Tags			documents
//	@Produce		json
//	@Param			q	query		string	false	"Fuzzy title/path filter"
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var docs []DocumentSummary
	var matches []Match
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		if q != "" {
			matches = c.Find(q)
		} else {
			docs = c.Documents()
		}
		return nil
	})
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	if q != "" {
		writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// OpenDocument handles POST /api/documents.
//
//	@Summary		Open a file, or create an untitled document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenRequest	false	"File to open"
//	@Success		201		{object}	DocumentSummary
//	@Success		200		{object}	DocumentSummary	"already open"
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	var doc DocumentSummary
	var created bool
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		if req.Path == "" {
			doc, created = c.New(), true
			return nil
		}
		before := len(c.Documents())
		var err error
		doc, err = c.Open(req.Path)
		created = len(c.Documents()) > before
		return err
	})
	if err != nil {
		writeError(w, "open document", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, doc)
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get a document with its text and cursor
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID or 'active'"
//	@Success		200	{object}	DocumentDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var out DocumentDetail
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		doc, err := c.Document(id)
		if err != nil {
			return err
		}
		if out.DocumentSummary, err = c.Summary(doc.ID); err != nil {
			return err
		}
		out.Text = doc.Buffer
		out.Cursor, err = c.Cursor(doc.ID)
		return err
	})
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CloseDocument handles DELETE /api/documents/{id}.
func (h *Handler) CloseDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		return c.Close(id)
	})
	if err != nil {
		writeError(w, "close document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditDocument handles PUT /api/documents/{id}/text.
//
// The text is applied as a user edit: Bound documents are written at once and
// the auto-sort countdown restarts.
func (h *Handler) EditDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var req EditRequest
	if !decode(w, r, &req) {
		return
	}
	var doc DocumentSummary
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		doc, err = c.Edit(id, req.Text, req.Cursor)
		return err
	})
	if err != nil {
		writeError(w, "edit document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SortDocument handles POST /api/documents/{id}/sort.
func (h *Handler) SortDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var out SortResponse
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		out.Document, out.Changed, err = c.SortNow(id)
		return err
	})
	if err != nil {
		writeError(w, "sort document", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveDocument handles POST /api/documents/{id}/save.
//
//	@Summary		Save a document in place, or to a new path
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Document ID or 'active'"
//	@Param			body	body		SaveRequest	false	"Optional target path"
//	@Success		200		{object}	SaveResponse
//	@Failure		409		{object}	errResponse	"document has no path"
//	@Security		BearerAuth
//	@Router			/documents/{id}/save [post]
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var req SaveRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	var path string
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		if req.Path != "" {
			path, err = c.SaveAs(id, req.Path)
		} else {
			path, err = c.Save(id)
		}
		return err
	})
	if err != nil {
		writeError(w, "save document", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Path: path})
}

// ActivateDocument handles POST /api/documents/{id}/activate.
func (h *Handler) ActivateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var doc DocumentSummary
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		doc, err = c.Activate(id)
		return err
	})
	if err != nil {
		writeError(w, "activate document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// RenameDocument handles PUT /api/documents/{id}/title.
func (h *Handler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var req RenameRequest
	if !decode(w, r, &req) {
		return
	}
	var doc DocumentSummary
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		doc, err = c.Rename(id, req.Title)
		return err
	})
	if err != nil {
		writeError(w, "rename document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PreviewDocument handles GET /api/documents/{id}/preview.
//
// Returns a standalone HTML page; ?fragment=1 returns the bare rendering.
func (h *Handler) PreviewDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.withID(w, r)
	if !ok {
		return
	}
	var html, title string
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		doc, err := c.Document(id)
		if err != nil {
			return err
		}
		title = doc.Title
		if h := preview.Heading(doc.Buffer); h != "" {
			title = h
		}
		html, err = c.Preview(doc.ID)
		return err
	})
	if err != nil {
		writeError(w, "preview document", err)
		return
	}
	if r.URL.Query().Get("fragment") == "" {
		if html, err = preview.Page(title, html); err != nil {
			writeError(w, "preview page", err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	var out SessionResponse
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		out.Documents = c.Documents()
		out.FontSize = c.FontSize()
		return nil
	})
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SetFontSize handles PUT /api/session/font-size.
//
//	@Summary		Set or adjust the global font size (clamped to 6..48)
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FontSizeRequest	true	"Absolute size or delta"
//	@Success		200		{object}	FontSizeResponse
//	@Security		BearerAuth
//	@Router			/session/font-size [put]
func (h *Handler) SetFontSize(w http.ResponseWriter, r *http.Request) {
	var req FontSizeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Size == 0 && req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("size or delta is required"))
		return
	}
	var size int
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		if req.Size != 0 {
			size, err = c.SetFontSize(req.Size)
		} else {
			size, err = c.AdjustFontSize(req.Delta)
		}
		return err
	})
	if err != nil {
		writeError(w, "set font size", err)
		return
	}
	writeJSON(w, http.StatusOK, FontSizeResponse{FontSize: size})
}

// PersistSession handles POST /api/session/persist.
func (h *Handler) PersistSession(w http.ResponseWriter, r *http.Request) {
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		return c.Persist()
	})
	if err != nil {
		writeError(w, "persist session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recent handles GET /api/recent.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	var entries []RecentEntry
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		var err error
		entries, err = c.Recent(limit)
		return err
	})
	if err != nil {
		writeError(w, "recent files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": entries})
}

// ForgetRecent handles DELETE /api/recent?path=...
func (h *Handler) ForgetRecent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	err := h.exec.Exec(r.Context(), func(c *controller.Controller) error {
		return c.Forget(path)
	})
	if err != nil {
		writeError(w, "forget recent file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
