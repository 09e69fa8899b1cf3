package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"
	"alcyxob/fitness-scheduler/internal/scheduling"
	"alcyxob/fitness-scheduler/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler holds the scheduling dependencies. The auth and exercise
// services are needed for the render-time safety check on day slots.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	exerciseService service.ExerciseService
	authService     service.AuthService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(
	scheduleService service.ScheduleService,
	exerciseService service.ExerciseService,
	authService service.AuthService,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		exerciseService: exerciseService,
		authService:     authService,
	}
}

// --- Request/Response Structs ---

type GenerateWeekRequest struct {
	WeekStart string `json:"weekStart"` // YYYY-MM-DD, defaults to the current week
}

type ExerciseSnapshotResponse struct {
	ExerciseID  string          `json:"exerciseId"`
	Name        string          `json:"name"`
	DurationMin int             `json:"durationMin"`
	Category    domain.Category `json:"category"`
}

type WorkoutResponse struct {
	ID             string                    `json:"id"`
	Date           time.Time                 `json:"date"`
	Status         domain.WorkoutStatus      `json:"status"`
	RestDay        bool                      `json:"restDay"`
	RestReason     string                    `json:"restReason,omitempty"`
	Exercise       *ExerciseSnapshotResponse `json:"exercise,omitempty"`
	VarietyRelaxed bool                      `json:"varietyRelaxed,omitempty"`
	CompletedAt    *time.Time                `json:"completedAt,omitempty"`
	CompletionNote string                    `json:"completionNote,omitempty"`
	SkipReason     string                    `json:"skipReason,omitempty"`
	Revision       int64                     `json:"revision"`
	// Redacted marks a slot whose exercise failed the final display-time
	// safety check and was withheld from the response.
	Redacted bool `json:"redacted,omitempty"`
}

type WeekScheduleResponse struct {
	ID        string                `json:"id"`
	WeekStart time.Time             `json:"weekStart"`
	WeekLabel string                `json:"weekLabel"`
	Status    domain.ScheduleStatus `json:"status"`
	Workouts  []WorkoutResponse     `json:"workouts"`
}

type ValidateWeekRequest struct {
	// ExerciseIDs lists the proposed week starting Monday; an empty string
	// marks a rest day.
	ExerciseIDs []string `json:"exerciseIds" binding:"required"`
}

type WorkoutUpdateRequest struct {
	Revision int64  `json:"revision" binding:"required,min=1"`
	Note     string `json:"note"`
	Reason   string `json:"reason"`
}

// --- Handler Methods ---

// GenerateWeek builds and persists a schedule for the requested week.
func (h *ScheduleHandler) GenerateWeek(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	// An empty body means "this week"; anything else must parse.
	var req GenerateWeekRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}

	weekStart, ok := h.resolveWeekStart(c, req.WeekStart)
	if !ok {
		return
	}

	week, err := h.scheduleService.GenerateWeek(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to generate schedule")
		return
	}

	c.JSON(http.StatusCreated, h.mapWeekToResponse(c, userID, week))
}

// PreviewWeek runs generation without persisting.
func (h *ScheduleHandler) PreviewWeek(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	weekStart, ok := h.resolveWeekStart(c, c.Query("weekStart"))
	if !ok {
		return
	}

	preview, err := h.scheduleService.PreviewWeek(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to preview schedule")
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GetWeek loads the persisted schedule for a week.
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	weekStart, ok := h.resolveWeekStart(c, c.Query("weekStart"))
	if !ok {
		return
	}

	week, err := h.scheduleService.GetWeek(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to load schedule")
		return
	}

	c.JSON(http.StatusOK, h.mapWeekToResponse(c, userID, week))
}

// GetSafeCatalog returns the exercises safe for the caller.
func (h *ScheduleHandler) GetSafeCatalog(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	catalog, err := h.scheduleService.SafeCatalog(c.Request.Context(), userID)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to load catalog")
		return
	}

	responses := make([]ExerciseResponse, 0, len(catalog))
	for _, exercise := range catalog {
		responses = append(responses, MapExerciseToResponse(exercise))
	}
	c.JSON(http.StatusOK, responses)
}

// ValidateWeek runs the offline pre-save check on a proposed week.
func (h *ScheduleHandler) ValidateWeek(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ValidateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(req.ExerciseIDs))
	for _, idStr := range req.ExerciseIDs {
		if idStr == "" {
			exerciseIDs = append(exerciseIDs, primitive.NilObjectID)
			continue
		}
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid exercise ID: %s", idStr))
			return
		}
		exerciseIDs = append(exerciseIDs, id)
	}

	result, err := h.scheduleService.ValidateWeek(c.Request.Context(), userID, exerciseIDs)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.abortScheduleError(c, err, "Failed to validate schedule")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegenerateDay swaps one day slot for a fresh safe pick.
func (h *ScheduleHandler) RegenerateDay(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	var req WorkoutUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.scheduleService.RegenerateDay(c.Request.Context(), userID, workoutID, req.Revision)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to regenerate day")
		return
	}

	c.JSON(http.StatusOK, h.mapWorkoutToResponse(c, userID, *workout))
}

// CompleteWorkout marks a day slot completed.
func (h *ScheduleHandler) CompleteWorkout(c *gin.Context) {
	h.updateWorkoutStatus(c, func(ctx *gin.Context, workoutID primitive.ObjectID, req WorkoutUpdateRequest) (*domain.ScheduledWorkout, error) {
		return h.scheduleService.CompleteWorkout(ctx.Request.Context(), workoutID, req.Revision, req.Note)
	})
}

// SkipWorkout marks a day slot skipped.
func (h *ScheduleHandler) SkipWorkout(c *gin.Context) {
	h.updateWorkoutStatus(c, func(ctx *gin.Context, workoutID primitive.ObjectID, req WorkoutUpdateRequest) (*domain.ScheduledWorkout, error) {
		return h.scheduleService.SkipWorkout(ctx.Request.Context(), workoutID, req.Revision, req.Reason)
	})
}

func (h *ScheduleHandler) updateWorkoutStatus(
	c *gin.Context,
	update func(*gin.Context, primitive.ObjectID, WorkoutUpdateRequest) (*domain.ScheduledWorkout, error),
) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	var req WorkoutUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := update(c, workoutID, req)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to update workout")
		return
	}

	c.JSON(http.StatusOK, h.mapWorkoutToResponse(c, userID, *workout))
}

// GetCyclingPlan returns the full 14-week cycling progression.
func (h *ScheduleHandler) GetCyclingPlan(c *gin.Context) {
	c.JSON(http.StatusOK, scheduling.FullCyclingPlan())
}

// GetUserAudit returns the assignment audit trail for a member, oldest
// first. Members can read their own trail; admins can read anyone's.
func (h *ScheduleHandler) GetUserAudit(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	callerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	if callerID != userID {
		role, err := getUserRoleFromContext(c)
		if err != nil || role != domain.RoleAdmin {
			abortWithError(c, http.StatusForbidden, "Access denied: cannot read another member's audit trail")
			return
		}
	}

	records, err := h.scheduleService.AuditTrail(c.Request.Context(), userID)
	if err != nil {
		h.abortScheduleError(c, err, "Failed to load audit trail")
		return
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// --- Helpers ---

func (h *ScheduleHandler) resolveWeekStart(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return scheduling.WeekStart(time.Now().UTC()), true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "weekStart must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return scheduling.WeekStart(parsed), true
}

func (h *ScheduleHandler) abortScheduleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrScheduleNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoSafeExercises):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrWorkoutConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		var violation *safety.SafetyViolation
		if errors.As(err, &violation) {
			// Strict mode refused a candidate. Nothing unsafe was persisted.
			abortWithError(c, http.StatusUnprocessableEntity, violation.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// displayConstraints loads the caller's current declared constraints for the
// render-time safety check. A load failure returns a poisoned marker so the
// check fails closed instead of rendering unchecked.
func (h *ScheduleHandler) displayConstraints(c *gin.Context, userID primitive.ObjectID) ([]string, bool) {
	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return nil, false
	}
	return user.HealthConstraints, true
}

// mapWeekToResponse converts a week with its slots, applying the display-time
// safety check to every assigned exercise.
func (h *ScheduleHandler) mapWeekToResponse(c *gin.Context, userID primitive.ObjectID, week *service.WeekSchedule) WeekScheduleResponse {
	constraints, ok := h.displayConstraints(c, userID)

	workouts := make([]WorkoutResponse, 0, len(week.Workouts))
	for _, workout := range week.Workouts {
		workouts = append(workouts, h.mapWorkout(c, constraints, ok, workout))
	}
	return WeekScheduleResponse{
		ID:        week.Schedule.ID.Hex(),
		WeekStart: week.Schedule.WeekStart,
		WeekLabel: scheduling.FormatWeekRange(week.Schedule.WeekStart),
		Status:    week.Schedule.Status,
		Workouts:  workouts,
	}
}

func (h *ScheduleHandler) mapWorkoutToResponse(c *gin.Context, userID primitive.ObjectID, workout domain.ScheduledWorkout) WorkoutResponse {
	constraints, ok := h.displayConstraints(c, userID)
	return h.mapWorkout(c, constraints, ok, workout)
}

// mapWorkout converts one day slot. This is the last line of defense: an
// assigned exercise that no longer passes the caller's safety check is
// withheld from the response, never rendered.
func (h *ScheduleHandler) mapWorkout(c *gin.Context, constraints []string, constraintsOK bool, workout domain.ScheduledWorkout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:             workout.ID.Hex(),
		Date:           workout.Date,
		Status:         workout.Status,
		RestDay:        workout.RestDay,
		RestReason:     workout.RestReason,
		VarietyRelaxed: workout.VarietyRelaxed,
		CompletedAt:    workout.CompletedAt,
		CompletionNote: workout.CompletionNote,
		SkipReason:     workout.SkipReason,
		Revision:       workout.Revision,
	}

	if workout.Exercise == nil {
		return resp
	}

	if !constraintsOK || !h.safeToDisplay(c, constraints, workout.Exercise.ExerciseID) {
		log.Printf("ERROR: display check failed for exercise %s in workout %s, redacting",
			workout.Exercise.ExerciseID.Hex(), workout.ID.Hex())
		resp.Redacted = true
		return resp
	}

	resp.Exercise = &ExerciseSnapshotResponse{
		ExerciseID:  workout.Exercise.ExerciseID.Hex(),
		Name:        workout.Exercise.Name,
		DurationMin: workout.Exercise.DurationMin,
		Category:    workout.Exercise.Category,
	}
	return resp
}

// safeToDisplay re-checks a stored assignment against the user's current
// declared constraints. Constraints added after scheduling make an old
// assignment unsafe; the stored snapshot alone cannot detect that.
func (h *ScheduleHandler) safeToDisplay(c *gin.Context, constraints []string, exerciseID primitive.ObjectID) bool {
	if len(constraints) == 0 {
		return true
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		// The library entry is gone; nothing to check conflicts against, but
		// the snapshot still describes what was assigned.
		return errors.Is(err, service.ErrExerciseNotFound)
	}

	return safety.IsSafeForDisplay(*exercise, constraints)
}
