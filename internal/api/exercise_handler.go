package api

import (
	"net/http"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string `json:"name"`
	Repetitions int    `json:"repetitions"`
	Sets        int    `json:"sets"`
}

// UpdateExerciseRequest carries a partial update; omitted fields are unchanged.
type UpdateExerciseRequest struct {
	Name        *string `json:"name"`
	Repetitions *int    `json:"repetitions"`
	Sets        *int    `json:"sets"`
}

// VideoUploadRequest asks for a presigned upload URL.
type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Repetitions int       `json:"repetitions"`
	Sets        int       `json:"sets"`
	HasVideo    bool      `json:"hasVideo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VideoUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
// A nil exercise maps to nil, which renders as JSON null.
func MapExerciseToResponse(ex *domain.Exercise) *ExerciseResponse {
	if ex == nil {
		return nil
	}
	return &ExerciseResponse{
		ID:          ex.ID.Hex(),
		Name:        ex.Name,
		Repetitions: ex.Repetitions,
		Sets:        ex.Sets,
		HasVideo:    ex.VideoKey != "",
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []*ExerciseResponse {
	responses := make([]*ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise handles POST /api/exercises.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), service.ExerciseInput{
		Name:        req.Name,
		Repetitions: req.Repetitions,
		Sets:        req.Sets,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises handles GET /api/exercises.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), domain.ExerciseFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise handles GET /api/exercises/:id.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise handles PATCH /api/exercises/:id.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), id, domain.ExercisePatch{
		Name:        req.Name,
		Repetitions: req.Repetitions,
		Sets:        req.Sets,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise handles DELETE /api/exercises/:id.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestVideoUpload handles POST /api/exercises/:id/video.
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VideoUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// GetVideoURL handles GET /api/exercises/:id/video.
func (h *ExerciseHandler) GetVideoURL(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	url, err := h.exerciseService.VideoDownloadURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VideoURLResponse{URL: url})
}
