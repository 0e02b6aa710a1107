package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/examroom/config"
	"github.com/lshigami/examroom/database"
	_ "github.com/lshigami/examroom/docs" // Swagger docs - auto-generated
	"github.com/lshigami/examroom/internal/controller"
	adminctrl "github.com/lshigami/examroom/internal/controller/admin"
	studentctrl "github.com/lshigami/examroom/internal/controller/student"
	teacherctrl "github.com/lshigami/examroom/internal/controller/teacher"
	userctrl "github.com/lshigami/examroom/internal/controller/user"
	"github.com/lshigami/examroom/internal/logger"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/lshigami/examroom/internal/service"
	"github.com/lshigami/examroom/internal/validation"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Examroom API
// @version 1.0
// @description School exam platform: teachers author multiple-choice exams, students take timed exams and get graded results.
// @contact.name API Support
// @contact.email support@examroom.local
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),

		// Core Application Components
		fx.Provide(
			database.NewDatabase,
			repository.NewStore,
			service.SystemClock,
			NewGinEngine,
		),

		// Services Layer
		fx.Provide(
			service.NewScoreConverterService,
			service.NewExplanationService,
			service.NewAuthService,
			service.NewExamService,
			service.NewQuestionService,
			service.NewSubmissionService,
			service.NewResultService,
		),

		// API Controllers Layer
		fx.Provide(
			userctrl.NewUserAuthController,
			adminctrl.NewAdminUserController,
			teacherctrl.NewTeacherExamController,
			studentctrl.NewStudentExamController,
			controller.NewController,
		),

		// Invokers - run in order
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(BootstrapAdmin),
		fx.Invoke(CloseExplanationService),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	app.Run()
	log.Info().Msg("Application stopped")
}

func NewGinEngine(cfg *config.Config) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := validation.Init(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !containsWildcard(cfg.Server.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r, nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Question{},
		&model.Submission{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

func BootstrapAdmin(auth service.AuthService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return auth.EnsureAdmin(ctx)
}

func CloseExplanationService(lc fx.Lifecycle, explanation service.ExplanationService) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return explanation.Close()
		},
	})
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	ctrl *controller.Controller,
) {
	ctrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Examroom API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			return server.Shutdown(ctx)
		},
	})
}
