package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/dillendillen/doya.app-sub001/internal/database"
	"github.com/dillendillen/doya.app-sub001/internal/router"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	utils.InitLogger()

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		utils.SetJWTSecret(secret)
	} else {
		utils.LogWarn("JWT_SECRET not set, using the built-in development secret")
	}

	dbConfig := database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "dog_crm_user"),
		Password:   utils.Getenv("DB_PASSWORD", "dog_crm_password"),
		Name:       utils.Getenv("DB_NAME", "dog_crm_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	}

	// A missing database is not fatal: the API comes up and answers 503 on
	// anything that needs persistence, so probes and the frontend keep
	// working while the database is provisioned.
	if err := database.InitDB(dbConfig); err != nil {
		utils.LogError(err, "Database unavailable, continuing without persistence")
	} else {
		utils.LogInfo("Database initialized", map[string]interface{}{"host": dbConfig.Host, "name": dbConfig.Name})
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	var allowedOrigins []string
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		allowedOrigins = strings.Split(raw, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, database.GetDB())

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})
	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		os.Exit(1)
	}
}
