package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/coursehub/internal/auth"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/job"
	"github.com/geocoder89/coursehub/internal/domain/transaction"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type CourseStore interface {
	handlers.Creator[course.Course]
	handlers.Lister[course.Course]
	handlers.Updater[course.Course]
	handlers.Deleter
}

type TransactionStore interface {
	handlers.Lister[transaction.Transaction]
}

type UserStore interface {
	handlers.UsersStore
	GetByID(ctx context.Context, id string) (user.User, error)
}

type JobStore interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
	GetByID(ctx context.Context, id string) (job.Job, error)
}

// Deps is everything the router wires into handlers. Lists, Prom and Ping
// are optional.
type Deps struct {
	Config config.Config
	Log    *slog.Logger

	Tokens *auth.Manager
	Hasher *security.Hasher

	Courses      CourseStore
	Transactions TransactionStore
	Users        UserStore
	Jobs         JobStore

	Lists *cache.Lists
	Prom  *observability.Prom
	Ping  func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	if !cfg.IsDevelopment() && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// logger and metrics sit outside the error handler so they see the
	// rendered status
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(serviceName(cfg)))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.ErrorHandler(log, cfg.IsDevelopment()))
	r.Use(middlewares.Recovery())
	r.Use(middlewares.SecurityHeaders(!cfg.IsDevelopment()))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	r.NoRoute(middlewares.NotFound())

	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Prom != nil {
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	api := r.Group("/api")
	if cfg.RateLimit > 0 {
		api.Use(middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).Middleware(middlewares.KeyByIP))
	}
	if cfg.MaxBodyBytes > 0 {
		api.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	api.Use(middlewares.RequireJSON())

	v1 := api.Group("/v1")

	protect := middlewares.NewAuthMiddleware(d.Tokens, d.Users).Protect()
	staff := middlewares.RestrictTo(user.RoleAdmin, user.RoleTeacher)

	authH := handlers.NewAuthHandler(d.Users, d.Jobs, d.Tokens, d.Hasher, cfg, log)
	v1.POST("/signup", authH.Signup)
	v1.POST("/login", authH.Login)
	v1.GET("/logout", authH.Logout)
	v1.POST("/forgotPassword", authH.ForgotPassword)
	v1.PATCH("/resetPassword/:token", authH.ResetPassword)
	v1.PATCH("/updateMyPassword", protect, authH.UpdateMyPassword)

	usersH := handlers.NewUsersHandler(d.Users, cfg.RequestTimeout)
	me := v1.Group("/users/me", protect)
	me.GET("", usersH.GetMe)
	me.DELETE("", usersH.DeleteMe)

	factoryCfg := handlers.FactoryConfig{Lists: d.Lists, Timeout: cfg.RequestTimeout}

	courses := handlers.NewFactory[course.Course](course.Schema, factoryCfg)
	cg := v1.Group("/courses", protect)
	cg.GET("", courses.GetAll(d.Courses))
	cg.GET("/:id", courses.GetOne(d.Courses))
	cg.POST("", staff, courses.CreateOne(d.Courses))
	cg.PATCH("/:id", staff, courses.UpdateOne(d.Courses))
	cg.DELETE("/:id", staff, courses.DeleteOne(d.Courses))

	transactions := handlers.NewFactory[transaction.Transaction](transaction.Schema, factoryCfg)
	tg := v1.Group("/transactions")
	if cfg.TransactionsRequireAuth {
		tg.Use(protect)
	}
	tg.GET("", transactions.GetAll(d.Transactions))

	adminJobs := handlers.NewAdminJobsHandler(d.Jobs, cfg.RequestTimeout)
	v1.GET("/admin/jobs/:id", protect, middlewares.RestrictTo(user.RoleAdmin), adminJobs.GetByID)

	return r
}

func serviceName(cfg config.Config) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	return "coursehub"
}
