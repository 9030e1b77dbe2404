// Package api serves scores over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
)

// Scorer is the part of the score engine the API needs.
type Scorer interface {
	Preview(ctx context.Context, userID string) (health.Result, error)
	Score(ctx context.Context, userID string) (health.Result, error)
	History(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error)
}

// Handler serves score endpoints.
type Handler struct {
	scorer       Scorer
	logger       *slog.Logger
	historyLimit int
}

// NewHandler creates a handler. historyLimit caps history responses when the
// request does not ask for fewer.
func NewHandler(scorer Scorer, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &Handler{
		scorer:       scorer,
		historyLimit: historyLimit,
		logger:       common.Component("api"),
	}
}

// NewRouter wires the score routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)

	users := r.PathPrefix("/users/{id}").Subrouter()
	users.HandleFunc("/score", h.GetScore).Methods(http.MethodGet)
	users.HandleFunc("/score", h.PostScore).Methods(http.MethodPost)
	users.HandleFunc("/score/history", h.GetHistory).Methods(http.MethodGet)
	return r
}

// ScoreResponse is the JSON body for a computed score.
type ScoreResponse struct {
	UserID string `json:"user_id"`
	Delta  *int   `json:"delta,omitempty"`
	health.Result
}

// HistoryEntry is one day in a history response.
type HistoryEntry struct {
	Date               string `json:"date"`
	LevelTitle         string `json:"level_title"`
	Total              int    `json:"total"`
	Level              int    `json:"level"`
	Trajectory         int    `json:"trajectory"`
	Behavior           int    `json:"behavior"`
	Position           int    `json:"position"`
	WealthBuilding     int    `json:"wealth_building_rate"`
	DebtVelocity       int    `json:"debt_velocity"`
	PaymentConsistency int    `json:"payment_consistency"`
	BudgetDiscipline   int    `json:"budget_discipline"`
	EmergencyBuffer    int    `json:"emergency_buffer"`
	DebtToIncome       int    `json:"debt_to_income"`
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetScore computes the user's current score without recording it.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	result, err := h.scorer.Preview(r.Context(), userID)
	if err != nil {
		h.writeError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{UserID: userID, Delta: result.Delta(), Result: result})
}

// PostScore computes and records today's score.
func (h *Handler) PostScore(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	result, err := h.scorer.Score(r.Context(), userID)
	if err != nil {
		h.writeError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusCreated, ScoreResponse{UserID: userID, Delta: result.Delta(), Result: result})
}

// GetHistory returns recorded scores, newest first. ?limit=N narrows the
// response below the configured cap.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	records, err := h.scorer.History(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "history": HistoryEntries(records)})
}

// HistoryEntries converts stored records to their JSON form.
func HistoryEntries(records []model.ScoreHistoryRecord) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			Date:               rec.ScoredDate,
			LevelTitle:         rec.LevelTitle,
			Total:              rec.Total,
			Level:              rec.Level,
			Trajectory:         rec.Trajectory,
			Behavior:           rec.Behavior,
			Position:           rec.Position,
			WealthBuilding:     rec.WealthBuilding,
			DebtVelocity:       rec.DebtVelocity,
			PaymentConsistency: rec.PaymentConsistency,
			BudgetDiscipline:   rec.BudgetDiscipline,
			EmergencyBuffer:    rec.EmergencyBuffer,
			DebtToIncome:       rec.DebtToIncome,
		})
	}
	return entries
}

func (h *Handler) writeError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, common.ErrUnknownUser) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown user " + userID})
		return
	}
	h.logger.Error("Request failed", "user_id", userID, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
