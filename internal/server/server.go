// Package server contains the HTTP and WebSocket handlers for the Circle API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"circle/internal/bootstrap"
	"circle/internal/config"
	"circle/internal/featureflags"
	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/notifications"
	"circle/internal/repository"
	"circle/internal/rewards"
	"circle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	profiles      *service.ProfileService
	communities   *service.CommunityService
	memberships   *service.MembershipService
	challenges    *service.ChallengeService
	submissions   *service.SubmissionService
	voting        *service.VotingService
	reputation    *service.ReputationService
	notifications *service.NotificationService
	badges        *service.BadgeService
	rewards       rewards.Policy
}

// NewServer connects to the database and Redis and builds a server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SyncBadges: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables caching and live notification delivery.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server needs a config and a database")
	}

	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("circle-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var publisher service.Publisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.profiles = service.NewProfileService(repository.NewProfileRepository(db))
	s.communities = service.NewCommunityService(communityRepo, membershipRepo)
	s.memberships = service.NewMembershipService(membershipRepo, communityRepo)
	s.challenges = service.NewChallengeService(challengeRepo, communityRepo, membershipRepo)
	s.submissions = service.NewSubmissionService(submissionRepo, challengeRepo, membershipRepo)
	s.voting = service.NewVotingService(
		repository.NewVoteRepository(db), submissionRepo, challengeRepo, membershipRepo, s.featureFlags,
	)
	s.reputation = service.NewReputationService(repository.NewReputationRepository(db))
	s.notifications = service.NewNotificationService(repository.NewNotificationRepository(db), publisher)
	s.badges = service.NewBadgeService(repository.NewBadgeRepository(db))
	s.rewards = rewards.NewDefaultPolicy(bootstrap.Points(cfg),
		s.reputation, s.badges, s.notifications, submissionRepo)

	return s, nil
}

// Reconciler exposes the challenge status reconciler for the scheduler.
func (s *Server) Reconciler() *service.ChallengeService {
	return s.challenges
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.LivenessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := middleware.AuthRequired(s.config.JWTSecret)
	optional := middleware.OptionalAuth(s.config.JWTSecret)

	api := app.Group("/api")

	me := api.Group("/me", auth)
	me.Get("/", s.GetMe)
	me.Patch("/", s.UpdateMe)
	me.Get("/communities", s.GetMyCommunities)
	me.Get("/communities/led", s.GetLedCommunities)
	me.Get("/reputation", s.GetMyReputation)
	me.Get("/badges", s.GetMyBadges)
	me.Get("/submissions", s.GetMySubmissions)
	me.Get("/features", s.GetFeatureFlags)
	me.Get("/notifications", s.GetMyNotifications)
	me.Get("/notifications/unread-count", s.GetUnreadCount)
	// Specific /read-all before the generic /:id/read
	me.Post("/notifications/read-all", s.MarkAllNotificationsRead)
	me.Post("/notifications/:id/read", s.MarkNotificationRead)

	api.Get("/users/:username", s.GetUserByUsername)
	api.Get("/badges", s.GetBadges)

	communities := api.Group("/communities")
	communities.Get("/", s.GetCommunities)
	communities.Post("/", auth, middleware.RateLimit(
		s.redis, 5, time.Hour, "create_community"), s.CreateCommunity)
	communities.Get("/:id/challenges", s.GetCommunityChallenges)
	communities.Post("/:id/join", auth, s.JoinCommunity)
	communities.Post("/:id/leave", auth, s.LeaveCommunity)
	communities.Get("/:id", optional, s.GetCommunity)

	challenges := api.Group("/challenges")
	challenges.Get("/", s.GetActiveChallenges)
	challenges.Post("/", auth, middleware.RateLimit(
		s.redis, 10, time.Hour, "create_challenge"), s.CreateChallenge)
	challenges.Get("/:id/submissions", optional, s.GetChallengeSubmissions)
	challenges.Put("/:id/submission", auth, middleware.RateLimit(
		s.redis, 20, time.Minute, "submit"), s.Submit)
	challenges.Get("/:id", optional, s.GetChallenge)

	submissions := api.Group("/submissions")
	submissions.Post("/:id/vote", auth, s.Vote)
	submissions.Delete("/:id/vote", auth, s.Unvote)
	submissions.Get("/:id", optional, s.GetSubmission)

	app.Get("/ws/notifications", auth, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so an
// absent client does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Circle API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error", "error", err.Error())
			return respondError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start notification wiring: %v", err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down notification hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
