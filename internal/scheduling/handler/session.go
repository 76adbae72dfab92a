package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"scrimtime/internal/scheduling/service"
	httputil "scrimtime/pkg/http"
	"scrimtime/pkg/logger"
	"scrimtime/pkg/model"
)

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Start", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	status, err := h.service.Start(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Start", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, status); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	statuses, totalCount, err := h.service.ListActive(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, statuses, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	if key == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Status", "operation", "WriteJSON", "error", err)
		}
		return
	}

	status, err := h.service.Status(r.Context(), key)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Status", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "Status", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) SubmitSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	participant := ps.ByName("participant")
	if key == "" || participant == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key and participant parameters are required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "SubmitSchedule", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var req model.SubmitScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SubmitSchedule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	status, err := h.service.SubmitSchedule(r.Context(), key, participant, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SubmitSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "SubmitSchedule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) RemoveSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	participant := ps.ByName("participant")
	if key == "" || participant == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key and participant parameters are required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "RemoveSchedule", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if _, err := h.service.RemoveSchedule(r.Context(), key, participant); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RemoveSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	if key == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Respond", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var req model.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Respond", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	status, err := h.service.Respond(r.Context(), key, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Respond", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) NextTime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	if key == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "NextTime", "operation", "WriteJSON", "error", err)
		}
		return
	}

	status, err := h.service.RequestNextTime(r.Context(), key)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "NextTime", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "NextTime", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	if key == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Session key parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Cancel", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := h.service.Cancel(r.Context(), key); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions", h.Start)
	router.GET("/api/v1/sessions", h.List)
	router.GET("/api/v1/sessions/:key", h.Status)
	router.DELETE("/api/v1/sessions/:key", h.Cancel)
	router.PUT("/api/v1/sessions/:key/schedules/:participant", h.SubmitSchedule)
	router.DELETE("/api/v1/sessions/:key/schedules/:participant", h.RemoveSchedule)
	router.POST("/api/v1/sessions/:key/responses", h.Respond)
	router.POST("/api/v1/sessions/:key/next", h.NextTime)
}
