package api

import (
	"net/http"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type CreateWorkoutRequest struct {
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	FocusArea   string   `json:"focusArea"`
	ExerciseIDs []string `json:"exerciseIds"`
}

// UpdateWorkoutRequest carries a partial update. A present exerciseIds replaces the list.
type UpdateWorkoutRequest struct {
	Type        *string   `json:"type"`
	Level       *string   `json:"level"`
	FocusArea   *string   `json:"focusArea"`
	ExerciseIDs *[]string `json:"exerciseIds"`
}

type AddExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type WorkoutResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Level       string    `json:"level"`
	FocusArea   string    `json:"focusArea"`
	ExerciseIDs []string  `json:"exerciseIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PopulatedWorkoutResponse renders resolved exercises in place of their ids.
// A dangling reference renders as null.
type PopulatedWorkoutResponse struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Level       string              `json:"level"`
	FocusArea   string              `json:"focusArea"`
	ExerciseIDs []*ExerciseResponse `json:"exerciseIds"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func MapWorkoutToResponse(w *domain.Workout) *WorkoutResponse {
	if w == nil {
		return nil
	}
	return &WorkoutResponse{
		ID:          w.ID.Hex(),
		Type:        w.Type,
		Level:       w.Level,
		FocusArea:   w.FocusArea,
		ExerciseIDs: hexIDs(w.ExerciseIDs),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []*WorkoutResponse {
	responses := make([]*WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func MapPopulatedWorkoutToResponse(w *domain.WorkoutWithExercises) PopulatedWorkoutResponse {
	exercises := make([]*ExerciseResponse, len(w.Exercises))
	for i, ex := range w.Exercises {
		exercises[i] = MapExerciseToResponse(ex)
	}
	return PopulatedWorkoutResponse{
		ID:          w.ID.Hex(),
		Type:        w.Type,
		Level:       w.Level,
		FocusArea:   w.FocusArea,
		ExerciseIDs: exercises,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func MapPopulatedWorkoutsToResponse(workouts []domain.WorkoutWithExercises) []PopulatedWorkoutResponse {
	responses := make([]PopulatedWorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapPopulatedWorkoutToResponse(&workouts[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateWorkout handles POST /api/workouts.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseIDs, err := parseObjectIDs("exerciseIds", req.ExerciseIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), service.WorkoutInput{
		Type:        req.Type,
		Level:       req.Level,
		FocusArea:   req.FocusArea,
		ExerciseIDs: exerciseIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts handles GET /api/workouts[?populate=exerciseIds].
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	field, policy, err := populateQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	workouts, err := h.workoutService.ListWorkouts(ctx, domain.WorkoutFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	if field == "" {
		c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
		return
	}

	populated, err := h.workoutService.Populate(ctx, workouts, field, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPopulatedWorkoutsToResponse(populated))
}

// GetWorkout handles GET /api/workouts/:id[?populate=exerciseIds].
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	field, policy, err := populateQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	workout, err := h.workoutService.GetWorkoutByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if field == "" {
		c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
		return
	}

	populated, err := h.workoutService.Populate(ctx, []domain.Workout{*workout}, field, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPopulatedWorkoutToResponse(&populated[0]))
}

// UpdateWorkout handles PATCH /api/workouts/:id.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := domain.WorkoutPatch{Type: req.Type, Level: req.Level, FocusArea: req.FocusArea}
	if req.ExerciseIDs != nil {
		ids, err := parseObjectIDs("exerciseIds", *req.ExerciseIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.ExerciseIDs = &ids
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout handles DELETE /api/workouts/:id.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise handles POST /api/workouts/:id/exercises.
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, err := parseObjectID("exerciseId", req.ExerciseID)
	if err != nil {
		respondError(c, err)
		return
	}

	workout, err := h.workoutService.AddExercise(c.Request.Context(), id, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}
