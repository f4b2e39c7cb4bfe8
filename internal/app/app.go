package app

import (
	"log/slog"

	httpapp "catalog_admin/internal/app/http"
	"catalog_admin/internal/config"
	"catalog_admin/internal/imagehost"
	sessionsvc "catalog_admin/internal/services/session"
	redisstorage "catalog_admin/internal/storage/redis"
	httprouters "catalog_admin/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
}

// New assembles the panel. Cloudinary credentials select the hosted image
// backend, a configured redis address selects the shared session store;
// without them local-disk and in-memory stand in for development.
func New(log *slog.Logger, cfg *config.Config) *App {
	var (
		host imagehost.Host
		err  error
	)
	if cfg.Images.CloudName != "" {
		host, err = imagehost.NewCloudinary(cfg.Images.CloudName, cfg.Images.APIKey, cfg.Images.APISecret)
	} else {
		host, err = imagehost.NewLocal(cfg.Images.BaseDir, cfg.Images.BaseURL)
	}
	if err != nil {
		panic(err)
	}

	var store sessionsvc.Store
	if cfg.Redis.Addr != "" {
		store = sessionsvc.NewRedisStore(redisstorage.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	} else {
		store = sessionsvc.NewMemoryStore(cfg.Session.TTL)
	}

	sessions := sessionsvc.NewService(log, store, cfg.Session.TTL)
	registry := httprouters.NewRegistry(cfg.Session.TTL)
	routers := httprouters.NewRouter(log, cfg, sessions, registry, host)

	server := httpapp.New(log, cfg.Session.Secret, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{HTTPServer: server}
}
