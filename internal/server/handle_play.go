package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/eastertrail/internal/game"
)

type ctxKey int

const ctxKeyPlay ctxKey = iota

func playSessionMiddleware(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := sessions.Get(chi.URLParam(r, "id"))
			if !ok {
				writeError(w, http.StatusNotFound, "play session not found")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPlay, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playFrom(r *http.Request) *playSession {
	return r.Context().Value(ctxKeyPlay).(*playSession)
}

func handlePlayState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, playFrom(r).Snapshot())
	}
}

func handlePlayCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd Command
		if err := readJSON(r, &cmd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		st, err := playFrom(r).Do(func(g *game.Session) error {
			return apply(g, cmd)
		})
		if err != nil {
			writeError(w, commandStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
