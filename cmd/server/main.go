package main

import (
	"fmt"
	"log"
	"net/http"

	"umeals/backend/internal/auth"
	"umeals/backend/internal/config"
	"umeals/backend/internal/database"
	"umeals/backend/internal/handler"
	"umeals/backend/internal/metrics"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "umeals/backend/docs" // This is important for swag to find the generated docs

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
	metrics.Init()
}

// @title           Umeals API
// @version         1.0
// @description     This is the API for the Umeals social events service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()
	router.Use(metrics.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:username
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateMe)
			userRoutes.GET("/me/friends", handler.GetFriends)
			userRoutes.GET("/me/requests", handler.GetIncomingRequests)
			userRoutes.GET("/:username", handler.GetUserByUsername)

			// Friendship routes
			userRoutes.POST("/:username/request", handler.SendFriendRequest)
			userRoutes.POST("/:username/unfriend", handler.Unfriend)
		}

		// Friend request lifecycle (protected)
		requestRoutes := apiV1.Group("/requests")
		requestRoutes.Use(auth.AuthMiddleware())
		{
			requestRoutes.POST("/:id/accept", handler.AcceptFriendRequest)
			requestRoutes.POST("/:id/reject", handler.RejectFriendRequest)
		}

		// Event routes (protected)
		eventRoutes := apiV1.Group("/events")
		eventRoutes.Use(auth.AuthMiddleware())
		{
			eventRoutes.GET("", handler.GetEvents)
			eventRoutes.GET("/:id", handler.GetEventByID)
			eventRoutes.POST("", handler.CreateEvent)
			eventRoutes.POST("/:id/attend", handler.AttendEvent)
			eventRoutes.DELETE("/:id/attend", handler.UnattendEvent)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			// Tags CRUD
			tags := adminRoutes.Group("/tags")
			{
				tags.POST("", handler.CreateTag)
				tags.GET("", handler.GetTags)
				tags.PUT("/:id", handler.UpdateTag)
				tags.DELETE("/:id", handler.DeleteTag)
			}
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
