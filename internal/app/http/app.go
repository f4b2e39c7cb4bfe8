package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmw "catalog_admin/internal/middleware"
	httprouters "catalog_admin/internal/transport/http"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
}

func New(log *slog.Logger, sessionSecret, host, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionSecret))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login)

		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}

		authed := api.Group("", s.routers.RequireSession)
		{
			authed.POST("/logout", s.routers.Logout)
			authed.GET("/me", s.routers.Me)
			authed.GET("/notices", s.routers.Notices)

			authed.GET("/options/categories", s.routers.CategoryOptions)
			authed.GET("/options/tags", s.routers.TagOptions)

			authed.POST("/tags", s.routers.CreateTag)
			authed.PUT("/tags/:id", s.routers.UpdateTag)
			authed.POST("/categories", s.routers.CreateCategory)
			authed.PUT("/categories/:id", s.routers.UpdateCategory)

			viewGroup := authed.Group("/:resource/view")
			{
				viewGroup.GET("", s.routers.View)
				viewGroup.POST("/sort", s.routers.SortView)
				viewGroup.POST("/page", s.routers.PageView)
				viewGroup.POST("/search", s.routers.SearchView)
				viewGroup.POST("/delete/open", s.routers.OpenDelete)
				viewGroup.POST("/delete/cancel", s.routers.CancelDelete)
				viewGroup.POST("/delete/confirm", s.routers.ConfirmDelete)
			}

			wizardGroup := authed.Group("/products/wizard")
			{
				wizardGroup.GET("", s.routers.WizardState)
				wizardGroup.POST("/start", s.routers.WizardStart)
				wizardGroup.POST("/basic", s.routers.WizardBasic)
				wizardGroup.POST("/variants/:variant/images", s.routers.WizardVariantUpload)
				wizardGroup.POST("/variants/:variant/images/remove", s.routers.WizardVariantRemove)
				wizardGroup.POST("/variants/:variant/images/primary", s.routers.WizardVariantPrimary)
				wizardGroup.POST("/submit", s.routers.WizardSubmit)
				wizardGroup.POST("/back", s.routers.WizardBack)
				wizardGroup.POST("/reset", s.routers.WizardReset)
			}
		}
	}
}
