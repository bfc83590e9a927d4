package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/planner"
	"github.com/pablasso/smartplan/internal/storage"
)

type handler struct {
	svc    *planner.Service
	logger *log.Logger
}

type createResponse struct {
	Success bool       `json:"success"`
	PlanID  string     `json:"plan_id"`
	Message string     `json:"message"`
	Plan    *plan.Plan `json:"plan"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// fail maps service errors to status codes. Unexpected errors are logged and
// reported as 500 without their detail.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErr(w, http.StatusNotFound, "Plan not found")
	case errors.Is(err, storage.ErrTaskNotFound):
		writeErr(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, plan.ErrNoTasks):
		writeErr(w, http.StatusNotFound, "No tasks found")
	case errors.Is(err, planner.ErrEmptyGoal), errors.Is(err, plan.ErrInvalidStatus):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrGeneration):
		h.logf(r, "generation failed: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
	default:
		h.logf(r, "request failed: %v", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) logf(r *http.Request, format string, args ...any) {
	h.logger.Printf("[%s] %s", RequestIDFromContext(r.Context()), fmt.Sprintf(format, args...))
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Smart Task Planner API"})
}

func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (h *handler) createPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Create(r.Context(), r.URL.Query().Get("goal"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		Success: true,
		PlanID:  p.ID,
		Message: "Plan created successfully",
		Plan:    p,
	})
}

func (h *handler) getPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Plan deleted"})
}

func (h *handler) progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Progress(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID, err := strconv.Atoi(vars["taskNumber"])
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid task number %q", vars["taskNumber"]))
		return
	}
	if err := h.svc.UpdateTaskStatus(r.Context(), vars["planId"], taskID, r.URL.Query().Get("status")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Task status updated"})
}

func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), id, &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(plan.ExportFileName(id)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// attachment builds a Content-Disposition value, quoting or encoding the
// filename as needed.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
