package api

import (
	"errors"
	"fmt"
	"net/http"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"
	"dietly/diet-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealHandler serves the catalog browse surface and the admin CRUD surface.
type MealHandler struct {
	mealService service.MealService
}

func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

// --- Request Structs ---

type MealRequest struct {
	Name         string              `json:"name" binding:"required"`
	MealType     domain.MealType     `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	Description  string              `json:"description"`
	Servings     int                 `json:"servings" binding:"omitempty,min=1"`
	Difficulty   string              `json:"difficulty"`
	Nutrition    domain.Nutrition    `json:"nutrition" binding:"required"`
	Ingredients  []domain.Ingredient `json:"ingredients" binding:"required,min=1"`
	Instructions []string            `json:"instructions"`
	DietaryTags  []string            `json:"dietaryTags"`
	Allergens    []string            `json:"allergens"`
}

func (r *MealRequest) toDomain() *domain.Meal {
	servings := r.Servings
	if servings == 0 {
		servings = 1
	}
	return &domain.Meal{
		Name:         r.Name,
		MealType:     r.MealType,
		Description:  r.Description,
		Servings:     servings,
		Difficulty:   r.Difficulty,
		Nutrition:    r.Nutrition,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		DietaryTags:  r.DietaryTags,
		Allergens:    r.Allergens,
	}
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Browse surface ---

// ListMeals returns the catalog, optionally filtered by query parameters
// mealType and dietaryTag.
func (h *MealHandler) ListMeals(c *gin.Context) {
	filter := repository.MealFilter{
		MealType:   domain.MealType(c.Query("mealType")),
		DietaryTag: c.Query("dietaryTag"),
	}

	meals, err := h.mealService.ListMeals(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrMealTypeInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to list meals.")
		}
		return
	}
	respondOK(c, http.StatusOK, meals)
}

// GetMeal returns one catalog meal, with a presigned image URL when the
// meal has an image.
func (h *MealHandler) GetMeal(c *gin.Context) {
	mealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid meal ID.")
		return
	}

	meal, err := h.mealService.GetMealByID(c.Request.Context(), mealID)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to load meal.")
		}
		return
	}

	imageURL, _ := h.mealService.GetMealImageURL(c.Request.Context(), mealID)
	respondOK(c, http.StatusOK, gin.H{"meal": meal, "imageUrl": imageURL})
}

// --- Admin surface ---

// CreateMeal adds a meal to the catalog. Admin only.
func (h *MealHandler) CreateMeal(c *gin.Context) {
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	meal, err := h.mealService.CreateMeal(c.Request.Context(), req.toDomain())
	if err != nil {
		if isMealValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to create meal.")
		}
		return
	}
	respondOK(c, http.StatusCreated, meal)
}

// UpdateMeal replaces a catalog meal's fields. Admin only.
func (h *MealHandler) UpdateMeal(c *gin.Context) {
	mealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid meal ID.")
		return
	}

	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	meal := req.toDomain()
	meal.ID = mealID
	updated, err := h.mealService.UpdateMeal(c.Request.Context(), meal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMealNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		case isMealValidationError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update meal.")
		}
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// DeleteMeal removes a meal from the catalog. Admin only.
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	mealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid meal ID.")
		return
	}

	if err := h.mealService.DeleteMeal(c.Request.Context(), mealID); err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to delete meal.")
		}
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": mealID.Hex()})
}

// RequestImageUpload issues a presigned PUT URL for the meal's image. Admin only.
func (h *MealHandler) RequestImageUpload(c *gin.Context) {
	mealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid meal ID.")
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	uploadURL, err := h.mealService.RequestImageUpload(c.Request.Context(), mealID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to prepare image upload.")
		}
		return
	}
	respondOK(c, http.StatusOK, gin.H{"uploadUrl": uploadURL})
}

func isMealValidationError(err error) bool {
	return errors.Is(err, domain.ErrMealNameRequired) ||
		errors.Is(err, domain.ErrMealTypeInvalid) ||
		errors.Is(err, domain.ErrMealCaloriesNegative) ||
		errors.Is(err, domain.ErrMealIngredientsRequired)
}
