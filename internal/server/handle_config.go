package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/playperu/eastertrail/internal/configstore"
	"github.com/playperu/eastertrail/internal/storybook"
)

func handleGetConfig(logger *slog.Logger, store configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.Load(r.Context())
		if err != nil {
			logger.Error("loading site config", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load config")
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func handleSaveConfig(logger *slog.Logger, store configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		patch, err := configstore.ParsePatch(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cfg, err := store.Merge(r.Context(), patch)
		if errors.Is(err, configstore.ErrInvalidPatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			logger.Error("saving site config", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save config")
			return
		}
		logger.Info("site config updated", "keys", len(patch))
		writeJSON(w, http.StatusOK, cfg)
	}
}

// siteConfig loads the operator overrides for players. A store failure
// degrades to the built-in content rather than breaking play.
func siteConfig(ctx context.Context, logger *slog.Logger, store configstore.Store) storybook.SiteConfig {
	cfg, err := store.Load(ctx)
	if err != nil {
		logger.Warn("site config unavailable, using defaults", "error", err)
		return storybook.SiteConfig{}
	}
	return cfg
}
