package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	User         *handlers.UserHandler
	Course       *handlers.CourseHandler
	Lesson       *handlers.LessonHandler
	Subscription *handlers.SubscriptionHandler
	Payment      *handlers.PaymentHandler
}

type Options struct {
	JWTSecret string
	// RateLimit is requests per minute per IP on /api; 0 disables it.
	RateLimit int
	// AuthRateLimit applies to register, login and token refresh.
	AuthRateLimit int
	// AccountCheck, when set, rejects tokens of deleted or inactive users.
	AccountCheck middleware.AccountCheck
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api")

	if opts.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               opts.RateLimit,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}

	var checks []middleware.AccountCheck
	if opts.AccountCheck != nil {
		checks = append(checks, opts.AccountCheck)
	}
	protected := middleware.JWTProtected(opts.JWTSecret, checks...)
	optional := middleware.JWTOptional(opts.JWTSecret, checks...)

	api.Get("/health", h.Health.Check)

	// Courses
	api.Get("/courses", optional, h.Course.List)
	api.Post("/courses", protected, h.Course.Create)
	api.Get("/courses/:id", protected, h.Course.Get)
	api.Put("/courses/:id", protected, h.Course.Update)
	api.Patch("/courses/:id", protected, h.Course.Patch)
	api.Delete("/courses/:id", protected, h.Course.Delete)

	// Lessons
	api.Get("/lessons", optional, h.Lesson.List)
	api.Post("/lessons/create", protected, h.Lesson.Create)
	api.Get("/lessons/:id", protected, h.Lesson.Get)
	api.Put("/lessons/:id/update", protected, h.Lesson.Update)
	api.Patch("/lessons/:id/update", protected, h.Lesson.Patch)
	api.Delete("/lessons/:id/delete", protected, h.Lesson.Delete)

	api.Post("/subscriptions", protected, h.Subscription.Toggle)

	// Users: public auth endpoints get a stricter limit.
	users := api.Group("/users")
	authLimit := func(c *fiber.Ctx) error { return c.Next() }
	if opts.AuthRateLimit > 0 {
		authLimit = limiter.New(limiter.Config{
			Max:               opts.AuthRateLimit,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		})
	}
	users.Post("/register", authLimit, h.Auth.Register)
	users.Post("/login", authLimit, h.Auth.Login)
	users.Post("/token/refresh", authLimit, h.Auth.Refresh)

	users.Get("/payments", protected, h.Payment.List)
	users.Post("/payments", protected, h.Payment.Create)
	users.Get("/stripe_session/:session_id", protected, h.Payment.Session)

	users.Get("/", protected, h.User.List)
	users.Get("/:id", protected, h.User.Get)
	users.Put("/:id", protected, h.User.Update)
	users.Patch("/:id", protected, h.User.Update)
	users.Delete("/:id", protected, h.User.Delete)
}
