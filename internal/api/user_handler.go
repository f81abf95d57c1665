package api

import (
	"errors"
	"fmt"
	"net/http"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler serves the profile surface and the admin user back-office.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest carries the editable profile fields. All fields are
// optional so the profile can be filled in over several visits; the
// completeness gate applies only at plan generation.
type UpdateProfileRequest struct {
	Age                int               `json:"age"`
	Gender             string            `json:"gender" binding:"omitempty,oneof=male female"`
	HeightCm           float64           `json:"heightCm"`
	CurrentWeightKg    float64           `json:"currentWeightKg"`
	TargetWeightKg     float64           `json:"targetWeightKg"`
	HealthGoal         domain.HealthGoal `json:"healthGoal" binding:"omitempty,oneof=lose maintain gain"`
	ActivityLevel      string            `json:"activityLevel"`
	DietaryPreferences []string          `json:"dietaryPreferences"`
	Allergies          []string          `json:"allergies"`
}

// GetMe returns the authenticated user's account.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to load account.")
		}
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// GetProfile returns just the profile sub-document, including whether it is
// complete enough to generate a plan.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load profile.")
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"profile":  user.Profile,
		"complete": user.Profile.IsComplete(),
	})
}

// UpdateProfile stores the profile and, when complete, the derived daily
// calorie target.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile := domain.Profile{
		Age:                req.Age,
		Gender:             req.Gender,
		HeightCm:           req.HeightCm,
		CurrentWeightKg:    req.CurrentWeightKg,
		TargetWeightKg:     req.TargetWeightKg,
		HealthGoal:         req.HealthGoal,
		ActivityLevel:      req.ActivityLevel,
		DietaryPreferences: req.DietaryPreferences,
		Allergies:          req.Allergies,
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProfile),
			errors.Is(err, service.ErrInvalidActivityLevel),
			errors.Is(err, service.ErrInvalidHealthGoal):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// --- Admin back-office ---

// ListUsers returns all accounts. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list users.")
		return
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, MapUserToResponse(&users[i]))
	}
	respondOK(c, http.StatusOK, responses)
}

// DeleteUser removes an account. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to delete user.")
		}
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": targetID.Hex()})
}
