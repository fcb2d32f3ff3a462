package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"campusforms/internal/model"
	"campusforms/internal/service"
	"campusforms/internal/transport/rest/middleware"
)

// FormHandler handles staff-facing form schema endpoints
type FormHandler struct {
	formSvc   *service.FormService
	exportSvc *service.ExportService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService, exportSvc *service.ExportService) *FormHandler {
	return &FormHandler{
		formSvc:   formSvc,
		exportSvc: exportSvc,
	}
}

// CreateFormRequest is the request body for creating a form
type CreateFormRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []model.Question `json:"questions"`
	OpensAt     *time.Time       `json:"opensAt"`
	ClosesAt    *time.Time       `json:"closesAt"`
	Published   bool             `json:"published"`
}

// Create handles POST /v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	if staffID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	form := &model.Form{
		OwnerID:     staffID,
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
		Published:   req.Published,
	}
	id, err := h.formSvc.Create(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	form.ID = id

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	forms, err := h.formSvc.List(r.Context(), staffID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

// Get handles GET /v1/forms/{formId}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, ok := h.loadForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Update handles PUT /v1/forms/{formId}
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, ok := h.loadForm(w, r)
	if !ok {
		return
	}

	var req CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form.Title = req.Title
	form.Description = req.Description
	form.Questions = req.Questions
	form.OpensAt = req.OpensAt
	form.ClosesAt = req.ClosesAt
	form.Published = req.Published

	if err := h.formSvc.Update(r.Context(), form); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Delete handles DELETE /v1/forms/{formId}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	form, ok := h.loadForm(w, r)
	if !ok {
		return
	}
	if err := h.formSvc.Delete(r.Context(), form.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Responses handles GET /v1/forms/{formId}/responses
func (h *FormHandler) Responses(w http.ResponseWriter, r *http.Request) {
	form, ok := h.loadForm(w, r)
	if !ok {
		return
	}
	responses, err := h.exportSvc.Responses(r.Context(), form.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

// Export handles GET /v1/forms/{formId}/responses/export
func (h *FormHandler) Export(w http.ResponseWriter, r *http.Request) {
	form, ok := h.loadForm(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="responses-`+form.ID+`.csv"`)
	if err := h.exportSvc.WriteCSV(r.Context(), form.ID, w); err != nil {
		// headers are already out; log-and-truncate is all that's left
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *FormHandler) loadForm(w http.ResponseWriter, r *http.Request) (*model.Form, bool) {
	formID := mux.Vars(r)["formId"]
	form, err := h.formSvc.Get(r.Context(), formID)
	if err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			writeError(w, http.StatusNotFound, "form not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	if form.OwnerID != middleware.GetStaffID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your form")
		return nil, false
	}
	return form, true
}
