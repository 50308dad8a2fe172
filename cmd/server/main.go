package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/dorahq/dora/configs"
	"github.com/dorahq/dora/internal/api/handlers"
	"github.com/dorahq/dora/internal/api/middleware"
	job "github.com/dorahq/dora/internal/jobs"
	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/queue"
	"github.com/dorahq/dora/internal/repository"
	"github.com/dorahq/dora/internal/service"
	"github.com/dorahq/dora/pkg/crypto"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	vault, err := crypto.NewVault(cfg.EncryptionKey, cfg.Production)
	if err != nil {
		log.Fatalf("Failed to initialize token vault: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo, r2Service)
	draftService := service.NewDraftService(draftRepo)
	stateService := service.NewOAuthStateService()
	platformService := service.NewPlatformService(*cfg, socialAccountRepo)
	connectService := service.NewConnectService(*cfg, socialAccountRepo, stateService, vault)

	publishers := map[string]service.Publisher{
		models.PlatformLinkedIn: service.NewLinkedInService(vault),
		models.PlatformTwitter:  service.NewTwitterService(vault),
		models.PlatformFacebook: service.NewFacebookService(vault),
	}
	publishService := service.NewPublishService(draftRepo, postRepo, socialAccountRepo, publishers)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Get("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(platformService, connectService, stateService, *cfg)
	app.Get("/auth/callback/:platform", platform.CallbackHandler)
	app.Post("/auth/disconnect", authMiddleware.AuthMiddleware(), platform.DisconnectAccount)
	app.Get("/auth/:platform", platform.ConnectAccount)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	draft := handlers.NewDraftHandler(draftService)
	api.Post("/drafts/create", draft.CreateDraft)
	api.Get("/drafts", draft.ListDrafts)
	api.Get("/drafts/:id", draft.GetDraft)
	api.Post("/drafts/status", draft.UpdateDraftStatus)

	post := handlers.NewPostHandler(publishService, client)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Post("/posts/repost", post.Repost)
	api.Get("/posts", post.ListPosts)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)
	api.Get("/media", media.ListMedia)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)

	// cron jobs
	accountSweepJob := job.NewAccountSweepJob(socialAccountRepo)

	//queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", accountSweepJob.SweepExpiredAccounts)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishDraft, queueW.HandlePublishDraftTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
