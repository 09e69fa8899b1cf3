package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"
	"alcyxob/fitness-scheduler/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency. The auth service is
// needed to screen member reads against their declared constraints.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	authService     service.AuthService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, authService service.AuthService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, authService: authService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	Name              string           `json:"name" binding:"required"`
	Category          domain.Category  `json:"category" binding:"required,oneof=cardio strength flexibility sport"`
	Subcategory       string           `json:"subcategory"`
	DurationMin       int              `json:"durationMin" binding:"required,min=1"`
	Intensity         domain.Intensity `json:"intensity" binding:"required,oneof=low moderate high"`
	Equipment         []string         `json:"equipment"`
	Contraindications []string         `json:"contraindications"`
	Modifications     string           `json:"modifications"`
	SafetyNotes       string           `json:"safetyNotes"`
}

type ExerciseResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Category          domain.Category  `json:"category"`
	Subcategory       string           `json:"subcategory,omitempty"`
	DurationMin       int              `json:"durationMin"`
	Intensity         domain.Intensity `json:"intensity"`
	Equipment         []string         `json:"equipment,omitempty"`
	Contraindications []string         `json:"contraindications,omitempty"`
	Modifications     string           `json:"modifications,omitempty"`
	SafetyNotes       string           `json:"safetyNotes,omitempty"`
	HasVideo          bool             `json:"hasVideo"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

// --- Handler Methods ---

// CreateExercise adds a new exercise to the library. Admin only.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), toExerciseInput(req))
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(*exercise))
}

// ListExercises returns the full library, including contraindicated entries.
// Admin only; members get their filtered catalog from the schedule routes.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.GetAllExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	responses := make([]ExerciseResponse, 0, len(exercises))
	for _, exercise := range exercises {
		responses = append(responses, MapExerciseToResponse(exercise))
	}
	c.JSON(http.StatusOK, responses)
}

// GetExercise returns one exercise by ID.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load exercise")
		}
		return
	}

	if !h.visibleToCaller(c, *exercise) {
		abortWithError(c, http.StatusNotFound, service.ErrExerciseNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(*exercise))
}

// UpdateExercise replaces an exercise definition. Admin only.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), exerciseID, toExerciseInput(req))
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(*exercise))
}

// DeleteExercise removes an exercise from the library. Admin only.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestVideoUpload returns a presigned PUT URL for the demo video. Admin only.
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	url, err := h.exerciseService.RequestVideoUploadURL(c.Request.Context(), exerciseID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, VideoURLResponse{URL: url})
}

// GetVideoDownload returns a presigned GET URL for the demo video.
func (h *ExerciseHandler) GetVideoDownload(c *gin.Context) {
	exerciseID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load exercise")
		}
		return
	}
	if !h.visibleToCaller(c, *exercise) {
		abortWithError(c, http.StatusNotFound, service.ErrExerciseNotFound.Error())
		return
	}

	url, err := h.exerciseService.GetVideoDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) || errors.Is(err, service.ErrNoVideo) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		}
		return
	}

	c.JSON(http.StatusOK, VideoURLResponse{URL: url})
}

// visibleToCaller applies the display-time safety check to a library read.
// Admins see everything; a member must not see an exercise that conflicts
// with their declared constraints. Lookup failures hide the exercise.
func (h *ExerciseHandler) visibleToCaller(c *gin.Context, exercise domain.Exercise) bool {
	if role, err := getUserRoleFromContext(c); err == nil && role == domain.RoleAdmin {
		return true
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		return false
	}
	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return safety.IsSafeForDisplay(exercise, user.HealthConstraints)
}

// --- Mappers ---

func toExerciseInput(req ExerciseRequest) service.ExerciseInput {
	return service.ExerciseInput{
		Name:              req.Name,
		Category:          req.Category,
		Subcategory:       req.Subcategory,
		DurationMin:       req.DurationMin,
		Intensity:         req.Intensity,
		Equipment:         req.Equipment,
		Contraindications: req.Contraindications,
		Modifications:     req.Modifications,
		SafetyNotes:       req.SafetyNotes,
	}
}

// MapExerciseToResponse converts a domain Exercise to its DTO.
func MapExerciseToResponse(exercise domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:                exercise.ID.Hex(),
		Name:              exercise.Name,
		Category:          exercise.Category,
		Subcategory:       exercise.Subcategory,
		DurationMin:       exercise.DurationMin,
		Intensity:         exercise.Intensity,
		Equipment:         exercise.Equipment,
		Contraindications: exercise.Contraindications,
		Modifications:     exercise.Modifications,
		SafetyNotes:       exercise.SafetyNotes,
		HasVideo:          exercise.VideoObjectKey != "",
		CreatedAt:         exercise.CreatedAt,
		UpdatedAt:         exercise.UpdatedAt,
	}
}

// parseObjectIDParam reads a path parameter as an ObjectID, aborting with a
// 400 on malformed input.
func parseObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
