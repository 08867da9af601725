package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/middlewares"
	"bitbucket.org/mmagritech/farm_backend/mobilesync"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/reports"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

const defaultPort = "8080"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			config.LogError(logger, "server.go", "loginHandler", req.Username, nil, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": info})
	}
}

func logoutHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			config.LogError(logger, "server.go", "logoutHandler", "", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ok})
	}
}

func referenceDataHandler[T any](logger *logrus.Logger, name string, load func(ctx context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := load(c.Request.Context())
		if err != nil {
			config.LogError(logger, "server.go", "referenceDataHandler", name, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load " + name})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	utils.RegisterBindingValidators()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Device-Id", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.AuthMiddleware())
	r.Use(gin.Recovery())

	// Handlers that need the DB are constructed after dependencies connect;
	// the readiness gate holds traffic off until then.
	var syncHandler *mobilesync.Handler
	var reportHandler *reports.Handler

	r.POST("/api/auth/login", loginHandler(logger))
	r.POST("/api/auth/logout", logoutHandler(logger))

	notReady := func(c *gin.Context) bool {
		if syncHandler == nil || reportHandler == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return true
		}
		return false
	}
	r.POST("/api/sync/push", func(c *gin.Context) {
		if notReady(c) {
			return
		}
		syncHandler.Push(c)
	})
	r.GET("/api/sync/pull", func(c *gin.Context) {
		if notReady(c) {
			return
		}
		syncHandler.Pull(c)
	})
	r.GET("/api/sync/runs", func(c *gin.Context) {
		if notReady(c) {
			return
		}
		syncHandler.Runs(c)
	})

	r.GET("/api/reference/vaccines", referenceDataHandler(logger, "vaccines", models.GetVaccines))
	r.GET("/api/reference/diseases", referenceDataHandler(logger, "diseases", models.GetDiseases))
	r.GET("/api/reference/townships", referenceDataHandler(logger, "townships", models.GetTownships))

	r.GET("/api/reports/livestock.xlsx", func(c *gin.Context) {
		if notReady(c) {
			return
		}
		reportHandler.LivestockRegister(c)
	})
	r.GET("/api/reports/milk.xlsx", func(c *gin.Context) {
		if notReady(c) {
			return
		}
		reportHandler.MilkProduction(c)
	})

	r.POST("/api/livestock/photo", livestockPhotoHandler(logger))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	engine := mobilesync.NewEngine(db, logger, mobilesync.NewPubSubNotifier(logger), config.GetRedisLock())
	syncHandler = mobilesync.NewHandler(engine, logger)
	reportHandler = reports.NewHandler(db, logger)

	logger.WithFields(logrus.Fields{"info": "Connection Established"}).Info("listening on port ", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
