package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	directoryRepo "lexbook/database/repository/directory"
	"lexbook/middleware"
	"lexbook/models"
	"lexbook/services/scheduling"
	"lexbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the scheduling core over HTTP.
type AppointmentHandler struct {
	Service scheduling.SchedulingService
	Cases   directoryRepo.CaseDirectory
	Loc     *time.Location
	Logger  *zap.Logger
}

func NewAppointmentHandler(svc scheduling.SchedulingService, cases directoryRepo.CaseDirectory, loc *time.Location, logger *zap.Logger) *AppointmentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentHandler{Service: svc, Cases: cases, Loc: loc, Logger: logger}
}

// GetAvailability handles GET /availability/:professionalId?date=YYYY-MM-DD&duration=minutes.
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	professionalID := c.Param("professionalId")
	date := c.Query("date")
	duration, err := strconv.Atoi(c.DefaultQuery("duration", "60"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid duration", "duration must be an integer number of minutes")
		return
	}

	slots, err := h.Service.ComputeAvailability(c.Request.Context(), professionalID, date, duration)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// CreateAppointment handles POST "".
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	var req scheduling.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Service.CreateAppointment(c.Request.Context(), caller, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// ListAppointments handles GET "" with status/type/search/startDate/endDate filters.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	q := scheduling.ListQuery{
		Status: models.AppointmentStatus(c.Query("status")),
		Type:   models.AppointmentType(c.Query("type")),
		Search: c.Query("search"),
	}
	if raw := c.Query("startDate"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, h.Loc)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid startDate", "expected YYYY-MM-DD")
			return
		}
		q.StartDate = day
	}
	if raw := c.Query("endDate"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, h.Loc)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid endDate", "expected YYYY-MM-DD")
			return
		}
		// endDate is inclusive: filter up to the end of that day.
		q.EndDate = day.AddDate(0, 0, 1)
	}

	appts, err := h.Service.ListAppointments(c.Request.Context(), caller, q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// GetAppointment handles GET /:id, enriching the response with the case
// title when the appointment links to one.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	appt, err := h.Service.GetAppointment(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"appointment": appt}
	if appt.CaseID != "" && h.Cases != nil {
		if cs, err := h.Cases.ResolveCase(c.Request.Context(), appt.CaseID); err == nil {
			resp["caseTitle"] = cs.Title
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateAppointment handles PUT /:id for content edits, time changes and
// status transitions.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	var req scheduling.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Service.UpdateAppointment(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment handles PUT /:id/cancel.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Service.CancelAppointment(c.Request.Context(), caller, c.Param("id"), body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// respondError maps the scheduling error taxonomy onto HTTP statuses.
func (h *AppointmentHandler) respondError(c *gin.Context, err error) {
	var verr *scheduling.ValidationError
	var cerr *scheduling.ConflictError
	var nferr *scheduling.NotFoundError
	var aerr *scheduling.AuthorizationError
	var ferr *scheduling.FinalizedStateError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Message,
			"field": verr.Field,
			"rule":  verr.Rule,
		})
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "requested time conflicts with existing appointments",
			"conflicts": cerr.Conflicts,
		})
	case errors.As(err, &nferr):
		c.JSON(http.StatusNotFound, gin.H{"error": nferr.Error()})
	case errors.As(err, &aerr):
		c.JSON(http.StatusForbidden, gin.H{"error": aerr.Error()})
	case errors.As(err, &ferr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ferr.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("appointment request failed", zap.Error(err))
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
	}
}
