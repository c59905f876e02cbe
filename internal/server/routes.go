package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/eastertrail/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Easter Trail API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, d.Health).Routes())

	// Player routes.
	r.Get("/api/config", handleGetConfig(logger, d.Config))
	r.Get("/api/days/{day}", handleGetDay(logger, d.Content, d.Config))
	r.Post("/api/days/{day}/play", handleStartPlay(logger, d.Content, d.Config, d.Sessions))
	r.Route("/api/play/{id}", func(r chi.Router) {
		r.Use(playSessionMiddleware(d.Sessions))
		r.Get("/", handlePlayState())
		r.Post("/commands", handlePlayCommand())
		r.Get("/events", handleEvents(d.Broker))
		r.Get("/ws", handlePlayWS(logger, d.Broker))
	})

	// Admin auth is always reachable.
	r.Post("/api/admin-auth", handleAdminLogin(d.Gate))
	r.Get("/api/admin-auth", handleAdminStatus(d.Gate))
	r.Delete("/api/admin-auth", handleAdminLogout(d.Gate))

	// Operator routes.
	r.Group(func(r chi.Router) {
		r.Use(adminAPIMiddleware(d.Gate))
		r.Post("/api/config", handleSaveConfig(logger, d.Config))
		r.Post("/api/upload/background", handleUploadBackground(logger, d.Uploads))
		r.Post("/api/upload/item", handleUploadItem(logger, d.Uploads))
		r.Get("/api/uploads/backgrounds", handleListBackgrounds(logger, d.Uploads))
		r.Get("/api/uploads/items", handleListItems(logger, d.Uploads))
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads", handleUploads(d.Uploads.Dir())))

	pages := http.NotFoundHandler()
	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			spa := handleSPA(d.SPADir)
			pages = spa
			r.NotFound(spa)
		}
	}
	r.Group(func(r chi.Router) {
		r.Use(adminPageMiddleware(d.Gate))
		r.Get("/admin", pages.ServeHTTP)
		r.Get("/admin/*", pages.ServeHTTP)
	})
}
