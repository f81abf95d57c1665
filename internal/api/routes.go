package api

import (
	"net/http"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	mealService service.MealService,
	planService service.PlanService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	mealHandler := NewMealHandler(mealService)
	planHandler := NewPlanHandler(planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/profile", userHandler.GetProfile)
		protected.PUT("/profile", userHandler.UpdateProfile)

		// --- Catalog browse ---
		mealGroup := protected.Group("/meals")
		{
			mealGroup.GET("", mealHandler.ListMeals)
			mealGroup.GET("/:id", mealHandler.GetMeal)
		}

		// --- Meal plans ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("/generate", planHandler.GeneratePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/active", planHandler.GetActivePlan)
			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.GET("/:id/nutrition", planHandler.GetPlanNutrition)
			planGroup.POST("/:id/consume", planHandler.MarkConsumed)
			planGroup.POST("/:id/stop", planHandler.StopPlan)
		}

		// --- Admin back-office ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/meals", mealHandler.CreateMeal)
			adminGroup.PUT("/meals/:id", mealHandler.UpdateMeal)
			adminGroup.DELETE("/meals/:id", mealHandler.DeleteMeal)
			adminGroup.POST("/meals/:id/image-upload", mealHandler.RequestImageUpload)

			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.DELETE("/users/:id", userHandler.DeleteUser)
		}
	}
}
