// Package api exposes the notepads service over JSON HTTP. Handlers are thin:
// they decode the request, call the orchestrator with the authenticated user
// id, and map the result. Not-found conditions on id-addressed routes are
// returned as an empty 204 rather than a 404, so a probing client cannot
// distinguish "missing" from "someone else's".
package api

import (
	"encoding/json"
	"net/http"

	"github.com/simpliv/notepads/internal/auth"
	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/notepads"
	"github.com/simpliv/notepads/internal/obs"
)

// Handler wraps the notepads service and provides HTTP handlers.
type Handler struct {
	svc *notepads.Service
}

// NewHandler creates an API handler over the given service.
func NewHandler(svc *notepads.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/me", h.GetMe)

	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("POST /categories", h.CreateCategory)
	mux.HandleFunc("GET /categories/{id}", h.GetCategory)
	mux.HandleFunc("PUT /categories/{id}", h.RenameCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /notepads", h.ListNotepads)
	mux.HandleFunc("POST /notepads", h.CreateNotepad)
	mux.HandleFunc("GET /notepads/{id}", h.GetNotepad)
	mux.HandleFunc("PUT /notepads/{id}", h.UpdateNotepad)
	mux.HandleFunc("DELETE /notepads/{id}", h.DeleteNotepad)
}

// GetMe handles GET /users/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cat, err := h.svc.CreateCategory(r.Context(), auth.UserID(r.Context()), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// GetCategory handles GET /categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.GetCategory(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// RenameCategory handles PUT /categories/{id}.
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cat, err := h.svc.RenameCategory(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/{id}. Responds with the deleted
// category's snapshot.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.DeleteCategory(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// ListNotepads handles GET /notepads with an optional category filter. Each
// entry carries a short text preview for list views.
func (h *Handler) ListNotepads(w http.ResponseWriter, r *http.Request) {
	pads, err := h.svc.ListNotepads(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("category"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]notepads.NotepadView, 0, len(pads))
	for _, pad := range pads {
		views = append(views, notepads.NotepadView{
			Notepad: pad,
			Preview: notepads.TextPreview(pad.Text, notepads.DefaultPreviewLines),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateNotepad handles POST /notepads.
func (h *Handler) CreateNotepad(w http.ResponseWriter, r *http.Request) {
	var req notepads.CreateNotepadParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pad, err := h.svc.CreateNotepad(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pad)
}

// GetNotepad handles GET /notepads/{id}. With ?format=html the response also
// carries the sanitized rendering of the notepad text.
func (h *Handler) GetNotepad(w http.ResponseWriter, r *http.Request) {
	pad, err := h.svc.GetNotepad(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	view := notepads.NotepadView{Notepad: *pad}
	if r.URL.Query().Get("format") == "html" {
		view.HTML = notepads.RenderHTML(pad.Text)
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateNotepad handles PUT /notepads/{id}.
func (h *Handler) UpdateNotepad(w http.ResponseWriter, r *http.Request) {
	var req notepads.UpdateNotepadParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pad, err := h.svc.UpdateNotepad(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pad)
}

// DeleteNotepad handles DELETE /notepads/{id}. Responds with the deleted
// notepad's snapshot.
func (h *Handler) DeleteNotepad(w http.ResponseWriter, r *http.Request) {
	pad, err := h.svc.DeleteNotepad(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pad)
}

// writeServiceError maps orchestrator errors onto responses. Not-found
// becomes the empty 204 convention; the remaining codes map through
// errs.HTTPStatus, with server-side failures logged and their message
// replaced by a generic body.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	if code == errs.NotFound {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("request_failed",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
	}
	writeError(w, status, errs.MessageOf(err))
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
