package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/PlanoCerto/app/controllers"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/auth"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/cache"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/clock"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/database"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/env"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/ranking"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/recommend"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/router"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/session"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/statistics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/visibility"
)

func main() {
	app, manager := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("[Server] Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	manager.Stop()
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	sessions := session.NewSessionStore()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/planocerto to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// activity table for the questionnaire, built-in unless a file is configured
	var table recommend.Table
	if path := env.GetEnv("ACTIVITY_TABLE_FILE", ""); path != "" {
		loaded, err := recommend.LoadTable(path)
		if err != nil {
			log.Fatalf("[Server] Failed to load activity table: %v", err)
		}
		table = loaded
	}

	// background work: view counter flush + ranking recompute jobs
	views := counter.NewViewBuffer(cache.GetClient(), db)
	engine := ranking.NewEngine(repos.Plan, env.GetEnvInt("RANKING_WORKERS", ranking.DefaultWorkers))
	manager := jobqueue.GetManager()
	manager.GetQueue().RegisterHandler(jobqueue.JobTypeRankingRecompute, jobqueue.RankingRecomputeHandler(engine))
	manager.Configure(views, time.Duration(env.GetEnvInt("RANKING_INTERVAL_MINUTES", 0))*time.Minute)
	manager.Start()

	now := clock.System
	ctrl := controllers.NewAPIController(controllers.Dependencies{
		Repos:       repos,
		Policy:      visibility.NewPolicy(now),
		Recommender: recommend.NewEngine(table),
		Tracker:     analytics.NewTracker(repos.Event),
		Badges:      badges.NewAwarder(repos.Badge),
		Auth:        auth.NewService(repos.User, now),
		Sessions:    sessions,
		Views:       views,
		Jobs:        manager.GetQueue(),
		Stats:       statistics.NewService(repos.Stats, cache.KV{}, now),
		Now:         now,
	})

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber and prometheus metrics
	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_METRICS_USER", "admin"): env.GetEnv("ADMIN_METRICS_PASSWORD", "admin"),
		},
	})
	app.Get("/metrics", metricsAuth, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/monitor", metricsAuth, monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, ctrl)

	return app, manager
}
