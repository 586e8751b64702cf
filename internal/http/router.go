package http

import (
	"log/slog"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/config"
	"github.com/geocoder89/taskmanager/internal/http/handlers"
	"github.com/geocoder89/taskmanager/internal/http/middlewares"
	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Cfg   config.Config
	Log   *slog.Logger
	Users handlers.UserService
	Tasks handlers.TaskService
	Prom  *observability.Prom
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// RateCounter stores rate limit windows, redis when configured.
	RateCounter middlewares.Counter
	// Ready lists the dependencies /readyz pings.
	Ready map[string]handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		d.Log.ErrorContext(ctx.Request.Context(), "panic recovered", "panic", recovered, "path", ctx.Request.URL.Path)
		handlers.RespondInternal(ctx)
	}))
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(d.Cfg.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondKind(ctx, apperr.KindNotFound, "no route for "+ctx.Request.Method+" "+ctx.Request.URL.Path)
	})

	// health
	h := handlers.NewHealthHandler(d.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	counter := d.RateCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	authLimiter := middlewares.NewRateLimiter(counter, d.Cfg.AuthRateLimit, d.Cfg.RateLimitWindow, d.Log)

	usersHandler := handlers.NewUsersHandler(d.Users)
	tasksHandler := handlers.NewTasksHandler(d.Tasks)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	users := api.Group("/users")
	{
		users.POST("/save", authLimiter.Middleware("save", middlewares.KeyByIP), usersHandler.Create)
		users.GET("/list", usersHandler.List)
		users.GET("/list/:id", usersHandler.GetByID)
		users.PUT("/update/:id", usersHandler.Update)
		users.DELETE("/delete/:id", usersHandler.Delete)
		users.POST("/login", authLimiter.Middleware("login", middlewares.KeyByIP), usersHandler.Login)
		users.PUT("/profile/:id", usersHandler.UpdateProfile)
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("/save", tasksHandler.Create)
		tasks.GET("/list", tasksHandler.List)
		tasks.GET("/list/:id", tasksHandler.GetByID)
		tasks.PUT("/update/:id", tasksHandler.Update)
		tasks.DELETE("/delete/:id", tasksHandler.Delete)
		tasks.GET("/user/:userId", tasksHandler.ListByUser)
	}

	return r
}
