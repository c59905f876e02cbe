package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/eastertrail/internal/configstore"
	"github.com/playperu/eastertrail/internal/game"
	"github.com/playperu/eastertrail/internal/storybook"
)

// PlayStartResponse is returned when a play session is created.
type PlayStartResponse struct {
	ID    string            `json:"id"`
	Day   storybook.DayView `json:"day"`
	State game.State        `json:"state"`
}

func resolveDay(r *http.Request, logger *slog.Logger, content *storybook.Content, store configstore.Store) (storybook.DayView, bool) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || !storybook.ValidDay(day) {
		return storybook.DayView{}, false
	}
	return content.Resolve(day, siteConfig(r.Context(), logger, store))
}

func handleGetDay(logger *slog.Logger, content *storybook.Content, store configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := resolveDay(r, logger, content, store)
		if !ok {
			writeError(w, http.StatusNotFound, "day not found")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleStartPlay(logger *slog.Logger, content *storybook.Content, store configstore.Store, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := resolveDay(r, logger, content, store)
		if !ok {
			writeError(w, http.StatusNotFound, "day not found")
			return
		}
		p := sessions.Create(view)
		logger.Info("play session started", "session_id", p.id, "day", view.Day)
		writeJSON(w, http.StatusCreated, PlayStartResponse{
			ID:    p.id,
			Day:   view,
			State: p.Snapshot(),
		})
	}
}
