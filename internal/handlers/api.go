package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/services"
)

const apiCacheControl = "public, max-age=60"

type APIHandlers struct {
	store  *services.Store
	logger *slog.Logger
}

func NewAPIHandlers(store *services.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

// minRatingParam reads the optional min_rating query parameter. Absent means
// no filtering (0); a non-numeric value is a validation error.
func minRatingParam(r *http.Request) (float64, *errors.AppError) {
	raw := r.URL.Query().Get("min_rating")
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.ValidationWrap(err, "min_rating must be a number between 0 and 10")
	}
	return services.ClampRating(value), nil
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	minRating, appErr := minRatingParam(r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	summary := services.Summarize(h.store.FilterByRating(minRating))

	errors.WriteSuccessWithHeaders(w, summary, map[string]string{
		"Cache-Control": apiCacheControl,
	})
}

func (h *APIHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	minRating, appErr := minRatingParam(r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	sales := h.store.FilterByRating(minRating)

	errors.WriteSuccessWithHeaders(w, sales, map[string]string{
		"Cache-Control": apiCacheControl,
	})
}

func (h *APIHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	minRating, appErr := minRatingParam(r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	series := services.DailySalesSeries(h.store.FilterByRating(minRating))

	errors.WriteSuccessWithHeaders(w, series, map[string]string{
		"Cache-Control": apiCacheControl,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}
