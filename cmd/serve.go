package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/encontro/venues-cli/internal/store"
	"github.com/encontro/venues-cli/internal/venue"
)

var servePort int

const defaultPresenceDuration = 4 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the venues HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/venues", func(r chi.Router) {
		r.Get("/search", handleSearch(env))
		r.Route("/{placeID}", func(r chi.Router) {
			r.Get("/classification", handleClassification(env))
			r.Post("/flags", handleFlag(env))
			r.Post("/presences", handlePresence(env))
			r.Post("/vibes", handleVibe(env))
		})
	})

	return r
}

func handleSearch(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if errLat != nil || errLon != nil {
			writeError(w, http.StatusBadRequest, "lat and lon are required")
			return
		}

		radius := 0
		if raw := r.URL.Query().Get("radius"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				writeError(w, http.StatusBadRequest, "radius must be a non-negative integer")
				return
			}
			radius = v
		}

		ranked, err := env.Pipeline.Run(r.Context(), lat, lon, radius)
		if err != nil {
			zap.L().Error("search request failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "search failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"venues": ranked})
	}
}

func handleClassification(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "placeID")

		entry, err := env.Cache.GetOrRefresh(r.Context(), placeID, nil, "")
		if err != nil {
			zap.L().Error("classification request failed",
				zap.String("place_id", placeID), zap.Error(err))
			writeError(w, http.StatusBadGateway, "classification failed")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func handleFlag(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "placeID")

		var req struct {
			ReporterID string `json:"reporter_id"`
			Type       string `json:"type"`
			Note       string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ReporterID == "" {
			writeError(w, http.StatusBadRequest, "reporter_id is required")
			return
		}

		err := env.Cache.RecordCommunityFlag(r.Context(), placeID, req.ReporterID, venue.FlagType(req.Type), req.Note)
		switch {
		case eris.Is(err, store.ErrAlreadyReported):
			writeError(w, http.StatusConflict, "already reported by this user")
		case err != nil:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
		}
	}
}

func handlePresence(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "placeID")

		var req struct {
			UserID        string `json:"user_id"`
			OpenToMeeting bool   `json:"open_to_meeting"`
			DurationMin   int    `json:"duration_minutes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		now := time.Now().UTC()
		duration := defaultPresenceDuration
		if req.DurationMin > 0 {
			duration = time.Duration(req.DurationMin) * time.Minute
		}

		err := env.Store.AddPresence(r.Context(), venue.Presence{
			PlaceID:       placeID,
			UserID:        req.UserID,
			OpenToMeeting: req.OpenToMeeting,
			StartedAt:     now,
			EndsAt:        now.Add(duration),
		})
		if err != nil {
			zap.L().Error("presence request failed", zap.String("place_id", placeID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not record presence")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "checked in"})
	}
}

func handleVibe(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "placeID")

		var req struct {
			UserID string `json:"user_id"`
			Tag    string `json:"tag"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" || req.Tag == "" {
			writeError(w, http.StatusBadRequest, "user_id and tag are required")
			return
		}

		err := env.Store.AddVibe(r.Context(), venue.Vibe{
			PlaceID:   placeID,
			UserID:    req.UserID,
			Tag:       req.Tag,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			zap.L().Error("vibe request failed", zap.String("place_id", placeID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not record vibe")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
