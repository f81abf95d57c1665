package api

import (
	"errors"

	"dietly/diet-app/internal/service"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with the same envelope:
// success: {"success": true, "data": ...}
// failure: {"success": false, "message": "...", "details": {...}?}
// The details block is populated for insufficient-meals failures so the
// client can render per-type availability and a suggestion.

func respondOK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// abortWithError is the middleware variant: it also stops the handler chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}

// respondServiceError maps an *InsufficientMealsError to the structured
// error shape; anything else falls through to a plain error response.
func respondServiceError(c *gin.Context, code int, err error) {
	var insufficient *service.InsufficientMealsError
	if errors.As(err, &insufficient) {
		c.JSON(code, gin.H{
			"success": false,
			"message": insufficient.Error(),
			"details": gin.H{
				"missingMealTypes": insufficient.MissingMealTypes,
				"availableCounts":  insufficient.AvailableCounts,
				"suggestion":       insufficient.Suggestion,
			},
		})
		return
	}
	respondError(c, code, err.Error())
}
