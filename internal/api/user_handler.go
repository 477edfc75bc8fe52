package api

import (
	"net/http"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves /api/users. Its :id path parameter is the user's external id.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- DTOs ---

type CreateUserRequest struct {
	ExternalID string   `json:"externalId"`
	Nickname   string   `json:"nickname"`
	Email      string   `json:"email"`
	WorkoutIDs []string `json:"workoutIds"`
}

type UpdateUserRequest struct {
	ExternalID *string   `json:"externalId"`
	Nickname   *string   `json:"nickname"`
	Email      *string   `json:"email"`
	WorkoutIDs *[]string `json:"workoutIds"`
}

type AddWorkoutRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Nickname   string    `json:"nickname"`
	Email      string    `json:"email"`
	WorkoutIDs []string  `json:"workoutIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PopulatedUserResponse renders resolved workouts in place of their ids.
// The workouts keep their exercise ids unresolved.
type PopulatedUserResponse struct {
	ID         string             `json:"id"`
	ExternalID string             `json:"externalId"`
	Nickname   string             `json:"nickname"`
	Email      string             `json:"email"`
	WorkoutIDs []*WorkoutResponse `json:"workoutIds"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func MapUserToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.Hex(),
		ExternalID: u.ExternalID,
		Nickname:   u.Nickname,
		Email:      u.Email,
		WorkoutIDs: hexIDs(u.WorkoutIDs),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	return responses
}

func MapPopulatedUserToResponse(u *domain.UserWithWorkouts) PopulatedUserResponse {
	workouts := make([]*WorkoutResponse, len(u.Workouts))
	for i, w := range u.Workouts {
		workouts[i] = MapWorkoutToResponse(w)
	}
	return PopulatedUserResponse{
		ID:         u.ID.Hex(),
		ExternalID: u.ExternalID,
		Nickname:   u.Nickname,
		Email:      u.Email,
		WorkoutIDs: workouts,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func MapPopulatedUsersToResponse(users []domain.UserWithWorkouts) []PopulatedUserResponse {
	responses := make([]PopulatedUserResponse, len(users))
	for i := range users {
		responses[i] = MapPopulatedUserToResponse(&users[i])
	}
	return responses
}

// --- Handler Methods ---

// ListUsers handles GET /api/users[?populate=workoutIds].
func (h *UserHandler) ListUsers(c *gin.Context) {
	field, policy, err := populateQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	users, err := h.userService.ListUsers(ctx, domain.UserFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	if field == "" {
		c.JSON(http.StatusOK, MapUsersToResponse(users))
		return
	}

	populated, err := h.userService.Populate(ctx, users, field, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPopulatedUsersToResponse(populated))
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workoutIDs, err := parseObjectIDs("workoutIds", req.WorkoutIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), service.UserInput{
		ExternalID: req.ExternalID,
		Nickname:   req.Nickname,
		Email:      req.Email,
		WorkoutIDs: workoutIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// GetUser handles GET /api/users/:id[?populate=workoutIds].
func (h *UserHandler) GetUser(c *gin.Context) {
	field, policy, err := populateQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUserByExternalID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if field == "" {
		c.JSON(http.StatusOK, MapUserToResponse(user))
		return
	}

	populated, err := h.userService.Populate(ctx, []domain.User{*user}, field, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPopulatedUserToResponse(&populated[0]))
}

// UpdateUser handles PATCH /api/users/:id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := domain.UserPatch{ExternalID: req.ExternalID, Nickname: req.Nickname, Email: req.Email}
	if req.WorkoutIDs != nil {
		ids, err := parseObjectIDs("workoutIds", *req.WorkoutIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.WorkoutIDs = &ids
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUserByExternalID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.userService.UpdateUser(ctx, user.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(updated))
}

// DeleteUser handles DELETE /api/users/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.userService.GetUserByExternalID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.userService.DeleteUser(ctx, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddWorkout handles POST /api/users/:id/workouts.
func (h *UserHandler) AddWorkout(c *gin.Context) {
	var req AddWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workoutID, err := parseObjectID("workoutId", req.WorkoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUserByExternalID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.userService.AddWorkout(ctx, user.ID, workoutID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(updated))
}
