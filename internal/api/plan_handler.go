package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler serves plan generation, reading, consumption tracking and the
// stop action.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type GeneratePlanRequest struct {
	StartDate string `json:"startDate" binding:"required"` // ISO date, "2006-01-02"
	Duration  int    `json:"duration" binding:"required"`
}

type ConsumeRequest struct {
	Date       string          `json:"date" binding:"required"` // ISO date or RFC3339; only the calendar date matters
	MealType   domain.MealType `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	SnackIndex *int            `json:"snackIndex"`
}

// parsePlanDate accepts a bare ISO date or a full RFC3339 timestamp.
func parsePlanDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// --- Handler Methods ---

// GeneratePlan builds a new plan for the authenticated user.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	startDate, err := parsePlanDate(req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "startDate must be an ISO date (YYYY-MM-DD).")
		return
	}

	plan, err := h.planService.GeneratePlan(c.Request.Context(), userID, startDate, req.Duration)
	if err != nil {
		var insufficient *service.InsufficientMealsError
		switch {
		case errors.Is(err, service.ErrInvalidDuration),
			errors.Is(err, service.ErrStartDateInPast):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProfileIncomplete):
			respondError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrActivePlanExists):
			respondError(c, http.StatusConflict, err.Error())
		case errors.As(err, &insufficient):
			respondServiceError(c, http.StatusUnprocessableEntity, err)
		default:
			log.Printf("ERROR: plan generation failed for user %s: %v", userID.Hex(), err)
			respondError(c, http.StatusInternalServerError, "Failed to generate plan.")
		}
		return
	}
	respondOK(c, http.StatusCreated, plan)
}

// ListPlans returns the authenticated user's plans, newest first.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list plans.")
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// GetActivePlan returns the plan the user is currently following.
func (h *PlanHandler) GetActivePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	plan, err := h.planService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, http.StatusNotFound, "No active plan.")
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to load active plan.")
		}
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// GetPlan returns one plan by ID (owner or admin).
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID, isAdmin(c))
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// GetPlanNutrition returns the aggregate and per-day nutrition totals.
func (h *PlanHandler) GetPlanNutrition(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	totals, perDay, err := h.planService.PlanNutrition(c.Request.Context(), userID, planID, isAdmin(c))
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"plan": totals, "days": perDay})
}

// MarkConsumed toggles the consumed flag on one meal slot.
func (h *PlanHandler) MarkConsumed(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	date, err := parsePlanDate(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "date must be an ISO date or RFC3339 timestamp.")
		return
	}
	snackIndex := 0
	if req.SnackIndex != nil {
		snackIndex = *req.SnackIndex
	}

	plan, err := h.planService.MarkConsumed(c.Request.Context(), userID, planID, date, req.MealType, snackIndex)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// StopPlan cancels the user's active plan.
func (h *PlanHandler) StopPlan(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	plan, err := h.planService.StopPlan(c.Request.Context(), userID, planID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// --- helpers ---

func (h *PlanHandler) planRequestIDs(c *gin.Context) (userID, planID primitive.ObjectID, ok bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err = primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid plan ID.")
		return
	}
	return userID, planID, true
}

func (h *PlanHandler) respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotActive),
		errors.Is(err, service.ErrDayNotFound),
		errors.Is(err, service.ErrInvalidSlot):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: plan operation failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Plan operation failed.")
	}
}
