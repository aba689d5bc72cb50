package main

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/config"
	"github.com/panelmgmt/pms-core/database"
	adminctrl "github.com/panelmgmt/pms-core/internal/controller/admin"
	userctrl "github.com/panelmgmt/pms-core/internal/controller/user"
	"github.com/panelmgmt/pms-core/internal/auth"
	"github.com/panelmgmt/pms-core/internal/logger"
	"github.com/panelmgmt/pms-core/internal/middleware"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/notify"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/panelmgmt/pms-core/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Panel Management API
// @version 1.0
// @description API for course panel question workflows: submission, peer tagging, similarity clustering, voting and grading.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewRand,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewPanelRepository,
			repository.NewQuestionRepository,
			repository.NewReactionRepository,
			repository.NewSimilarityRepository,
			repository.NewMetricRepository,
			repository.NewAuditLogRepository,
		),

		// Auth, storage and delivery
		fx.Provide(
			auth.NewManager,
			auth.NewGoogleVerifier,
			auth.NewCaptchaVerifier,
			storage.NewS3BlobStore,
			notify.NewSESNotifier,
		),

		// Services layer
		fx.Provide(
			service.NewOnceGuard,
			service.NewModerationService,
			service.NewMetricService,
			service.NewDistributionService,
			service.NewClusterService,
			service.NewVotingService,
			service.NewScoringService,
			service.NewQuestionService,
			service.NewPanelService,
			service.NewUserService,
			service.NewRosterService,
			service.NewTokenService,
			service.NewSweepService,
		),

		// API controllers layer
		fx.Provide(
			userctrl.NewAuthController,
			userctrl.NewPanelController,
			userctrl.NewQuestionController,
			userctrl.NewVotingController,
			userctrl.NewMetricController,
			adminctrl.NewPanelAdminController,
			adminctrl.NewUserAdminController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(StartSweep),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// NewRand seeds the shared randomness source for the distribution engine.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Env != "local" && cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	manager *auth.Manager,
	auditLogs repository.AuditLogRepository,
	authCtrl *userctrl.AuthController,
	panelCtrl *userctrl.PanelController,
	questionCtrl *userctrl.QuestionController,
	votingCtrl *userctrl.VotingController,
	metricCtrl *userctrl.MetricController,
	panelAdminCtrl *adminctrl.PanelAdminController,
	userAdminCtrl *adminctrl.UserAdminController,
) {
	api := router.Group("/api/v1")

	// Unauthenticated surface. Login routes still leave an audit trail.
	api.POST("/auth/login", middleware.Audit(auditLogs), authCtrl.GoogleLogin)
	api.POST("/auth/panel-login", middleware.Audit(auditLogs), authCtrl.PanelLogin)
	api.GET("/public/panels", panelCtrl.ListPublicPanels)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(manager), middleware.Audit(auditLogs))
	{
		authed.GET("/panels", middleware.RequireCapability(middleware.CapViewPanels), panelCtrl.ListPanels)
		authed.GET("/panels/:panel_id", middleware.RequireCapability(middleware.CapViewPanels), panelCtrl.GetPanel)

		authed.POST("/questions", middleware.RequireCapability(middleware.CapSubmitQuestions), questionCtrl.SubmitQuestion)
		authed.POST("/questions/batch", middleware.RequireCapability(middleware.CapSubmitQuestions), questionCtrl.SubmitQuestionBatch)
		authed.GET("/panels/:panel_id/questions/mine", middleware.RequireCapability(middleware.CapViewOwnData), questionCtrl.MyQuestions)

		authed.GET("/panels/:panel_id/tagging", middleware.RequireCapability(middleware.CapTagQuestions), questionCtrl.TaggingAssignment)
		authed.POST("/panels/:panel_id/tagging", middleware.RequireCapability(middleware.CapTagQuestions), questionCtrl.SubmitTagging)
		authed.POST("/panels/:panel_id/similar", middleware.RequireCapability(middleware.CapTagQuestions), questionCtrl.MarkSimilar)

		authed.GET("/panels/:panel_id/voting", middleware.RequireCapability(middleware.CapVote), votingCtrl.VotingList)
		authed.POST("/panels/:panel_id/voting", middleware.RequireCapability(middleware.CapVote), votingCtrl.SubmitVoteOrder)
		authed.GET("/panels/:panel_id/final", middleware.RequireCapability(middleware.CapViewPanels), votingCtrl.FinalList)

		authed.GET("/me/metrics", middleware.RequireCapability(middleware.CapViewOwnData), metricCtrl.MyMetrics)
		authed.GET("/panels/:panel_id/metrics/me", middleware.RequireCapability(middleware.CapViewOwnData), metricCtrl.MyPanelMetric)

		admin := authed.Group("/admin")
		{
			admin.POST("/panels", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.CreatePanel)
			admin.PATCH("/panels/:panel_id", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.ReplacePanel)
			admin.GET("/panels/:panel_id/questions", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.PanelQuestions)
			admin.POST("/panels/:panel_id/distribute", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.Distribute)
			admin.POST("/panels/:panel_id/cluster", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.Cluster)
			admin.POST("/panels/:panel_id/score", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.ScorePanel)
			admin.GET("/panels/:panel_id/metrics", middleware.RequireCapability(middleware.CapViewMetrics), panelAdminCtrl.PanelMetrics)
			admin.POST("/sweep", middleware.RequireCapability(middleware.CapManagePanels), panelAdminCtrl.TriggerSweep)

			admin.POST("/users", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.CreateUser)
			admin.GET("/users", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.ListUsers)
			admin.GET("/users/:user_id", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.GetUser)
			admin.POST("/roster/registrar", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.ImportRegistrarRoster)
			admin.POST("/roster/lms", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.ImportLMSRoster)
			admin.GET("/audit", middleware.RequireCapability(middleware.CapManageUsers), userAdminCtrl.AuditTrail)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Panel management API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartSweep ties the deadline sweep schedule to the application lifecycle.
func StartSweep(lc fx.Lifecycle, sweep service.SweepService) {
	lc.Append(fx.Hook{
		OnStart: sweep.Start,
		OnStop:  sweep.Stop,
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Panel{},
		&model.Question{},
		&model.Reaction{},
		&model.SimilarityEdge{},
		&model.Metric{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
