package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"realty-catalog/internal/archive"
	"realty-catalog/internal/cache"
	"realty-catalog/internal/catalog"
	"realty-catalog/internal/config"
	"realty-catalog/internal/favorites"
	"realty-catalog/internal/handlers"
	"realty-catalog/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/catalog.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize archive backend based on configuration
	var arch archive.Archive
	archiveType := appConfig.Archive.Type
	if archiveType == "" {
		archiveType = getEnv("ARCHIVE_TYPE", "none")
	}

	switch archiveType {
	case "mysql":
		log.Println("Using MySQL archive with GORM")
		mysqlCfg := appConfig.Archive.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormArchive, err := archive.NewGormArchive(
			getEnvOrConfig(mysqlCfg.Host, "ARCHIVE_HOST", "mysql"),
			getEnvOrConfig(portStr, "ARCHIVE_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "ARCHIVE_USER", "catalog_user"),
			getEnvOrConfig(mysqlCfg.Password, "ARCHIVE_PASSWORD", "catalog_pass"),
			getEnvOrConfig(mysqlCfg.Database, "ARCHIVE_NAME", "catalog_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL archive: %v", err)
		}
		defer gormArchive.Close()

		if err := gormArchive.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize archive schema: %v", err)
		}
		arch = gormArchive

	case "postgres":
		log.Println("Using PostgreSQL archive")
		pgCfg := appConfig.Archive.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		sqlArchive, err := archive.NewSQLArchive(
			getEnvOrConfig(pgCfg.Host, "ARCHIVE_HOST", "db"),
			getEnvOrConfig(portStr, "ARCHIVE_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "ARCHIVE_USER", "catalog_user"),
			getEnvOrConfig(pgCfg.Password, "ARCHIVE_PASSWORD", "catalog_pass"),
			getEnvOrConfig(pgCfg.Database, "ARCHIVE_NAME", "catalog_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL archive: %v", err)
		}
		defer sqlArchive.Close()

		if err := sqlArchive.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize archive schema: %v", err)
		}
		arch = sqlArchive

	default:
		log.Println("Archive disabled, catalog is in-memory only")
	}

	// Assemble the catalog
	store := catalog.NewStore()
	favoritesIndex := favorites.NewIndex()
	service := catalog.NewService(store, favoritesIndex, arch, catalog.Policy{
		AcceptRejectsOthers: appConfig.Catalog.AcceptRejectsOthers,
	})

	// Load seed catalog if configured
	if appConfig.Catalog.SeedFile != "" {
		created, err := service.LoadSeed(appConfig.Catalog.SeedFile)
		if err != nil {
			log.Fatalf("Failed to load seed catalog: %v", err)
		}
		if created > 0 {
			log.Printf("Seeded catalog with %d listings from %s", created, appConfig.Catalog.SeedFile)
		}
	}

	// Initialize and start snapshot scheduler (archive required)
	var appScheduler *scheduler.Scheduler
	if arch != nil {
		appScheduler = scheduler.NewScheduler(store, arch, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()
	}

	// Initialize search cache
	var cacheClient *cache.Client
	if appConfig.Cache.Enabled {
		addr := getEnvOrConfig(appConfig.Cache.Addr, "REDIS_ADDR", "localhost:6379")
		ttl := appConfig.Cache.GetTTL()
		if ttl <= 0 {
			ttl = time.Minute
		}
		cacheClient = cache.NewClient(addr, appConfig.Cache.Password, ttl)
		defer cacheClient.Close()
		log.Printf("Search cache enabled (redis %s, ttl %s)", addr, ttl)
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "If-Match"},
		AllowCredentials: true,
	}))

	// Routes
	catalogHandler := handlers.NewCatalogHandler(service, cacheClient)

	r.GET("/health", healthCheck)
	r.GET("/api/properties", catalogHandler.Search)
	r.GET("/api/properties/:id", catalogHandler.Get)
	r.POST("/api/properties", catalogHandler.Create)
	r.PUT("/api/properties/:id", catalogHandler.Update)
	r.DELETE("/api/properties/:id", catalogHandler.Delete)

	r.POST("/api/properties/:id/offers", catalogHandler.SubmitOffer)
	r.POST("/api/properties/:id/offers/:offerId/resolve", catalogHandler.ResolveOffer)
	r.POST("/api/properties/:id/viewings", catalogHandler.ScheduleViewing)
	r.POST("/api/properties/:id/viewings/:viewingId/complete", catalogHandler.CompleteViewing)
	r.POST("/api/properties/:id/viewings/:viewingId/cancel", catalogHandler.CancelViewing)

	r.POST("/api/favorites/toggle", catalogHandler.ToggleFavorite)
	r.GET("/api/favorites/:userId", catalogHandler.ListFavorites)

	adminHandler := handlers.NewAdminHandler(service, arch, appScheduler)
	admin := r.Group("/api/admin")
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.POST("/snapshot/run", adminHandler.RunSnapshot)
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)
	}

	port := getEnv("PORT", fmt.Sprintf("%d", appConfig.Server.Port))
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// getEnv returns the environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig prefers the config value, then the environment, then the default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
