package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"localcloud-tools-backend/config"
	_ "localcloud-tools-backend/docs"
	"localcloud-tools-backend/internal/controller"
	"localcloud-tools-backend/internal/dockerexec"
	"localcloud-tools-backend/internal/elasticsearch"
	"localcloud-tools-backend/internal/gateway"
	"localcloud-tools-backend/internal/kafka"
	"localcloud-tools-backend/internal/parser"
	"localcloud-tools-backend/internal/runner"
	"localcloud-tools-backend/internal/scheduler"
	"localcloud-tools-backend/internal/service"
	"localcloud-tools-backend/internal/snapshot"
)

// @title           LocalCloud Tools API
// @version         1.0
// @description     Debugging tools for a local cloud emulator: log retrieval and analysis, IAM policy suggestions, in-container command execution and emulator management.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @tag.name         logs
// @tag.description  Emulator log retrieval and analysis

// @tag.name         iam
// @tag.description  IAM denial analysis and policy generation

// @tag.name         exec
// @tag.description  Command execution inside the emulator container

// @tag.name         emulator
// @tag.description  Emulator health, chaos faults and state snapshots

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
		),
		fx.Provide(
			NewGinEngine,
			parser.NewEmulatorLogParser,
			runner.NewProcessRunner,
			dockerexec.NewDockerExecutor,
			gateway.NewClient,
			NewSnapshotManager,
			kafka.NewLogForwarder,
			elasticsearch.NewLogArchive,
			service.NewLogService,
			service.NewIamService,
			service.NewExecService,
			controller.NewLogController,
			controller.NewIamController,
			controller.NewExecController,
			controller.NewEmulatorController,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			RegisterScheduler,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logController *controller.LogController,
	iamController *controller.IamController,
	execController *controller.ExecController,
	emulatorController *controller.EmulatorController,
) {
	controller.RegisterLogRoutes(router, logController)
	controller.RegisterIamRoutes(router, iamController)
	controller.RegisterExecRoutes(router, execController)
	controller.RegisterEmulatorRoutes(router, emulatorController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

func NewSnapshotManager(cfg *config.Config) snapshot.Manager {
	return snapshot.NewManager(cfg.Snapshot.FilePath)
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, gatewayClient gateway.Client) {
	scheduler.NewScheduler(lc, cfg, gatewayClient)
}
