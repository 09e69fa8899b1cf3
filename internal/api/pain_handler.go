package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/service"

	"github.com/gin-gonic/gin"
)

// PainHandler holds the pain service dependency.
type PainHandler struct {
	painService service.PainService
}

// NewPainHandler creates a new PainHandler.
func NewPainHandler(painService service.PainService) *PainHandler {
	return &PainHandler{painService: painService}
}

// --- Request/Response Structs ---

type ReportPainRequest struct {
	BodyPart string `json:"bodyPart" binding:"required"`
	Notes    string `json:"notes"`
}

type PainReportResponse struct {
	ID           string     `json:"id"`
	BodyPart     string     `json:"bodyPart"`
	ReportedDate time.Time  `json:"reportedDate"`
	ResolvedDate *time.Time `json:"resolvedDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type RecoveryStatusResponse struct {
	Message       string               `json:"message"`
	EmergencyStop bool                 `json:"emergencyStop"`
	ActiveReports []PainReportResponse `json:"activeReports"`
}

// --- Handler Methods ---

// ReportPain records a new pain report for the caller.
func (h *PainHandler) ReportPain(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ReportPainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	report, err := h.painService.ReportPain(c.Request.Context(), userID, req.BodyPart, req.Notes)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to record pain report")
		return
	}

	c.JSON(http.StatusCreated, MapPainReportToResponse(*report))
}

// ResolvePain ends a report's exclusion window.
func (h *PainHandler) ResolvePain(c *gin.Context) {
	reportID, ok := parseObjectIDParam(c, "reportId")
	if !ok {
		return
	}

	if err := h.painService.ResolvePain(c.Request.Context(), reportID); err != nil {
		if errors.Is(err, service.ErrPainReportNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve pain report")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRecoveryStatus returns the advisory recovery view for the caller.
func (h *PainHandler) GetRecoveryStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	status, err := h.painService.RecoveryStatus(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load recovery status")
		return
	}

	reports := make([]PainReportResponse, 0, len(status.ActiveReports))
	for _, report := range status.ActiveReports {
		reports = append(reports, MapPainReportToResponse(report))
	}
	c.JSON(http.StatusOK, RecoveryStatusResponse{
		Message:       status.Message,
		EmergencyStop: status.EmergencyStop,
		ActiveReports: reports,
	})
}

// MapPainReportToResponse converts a domain PainReport to its DTO.
func MapPainReportToResponse(report domain.PainReport) PainReportResponse {
	return PainReportResponse{
		ID:           report.ID.Hex(),
		BodyPart:     report.BodyPart,
		ReportedDate: report.ReportedDate,
		ResolvedDate: report.ResolvedDate,
		Notes:        report.Notes,
	}
}
