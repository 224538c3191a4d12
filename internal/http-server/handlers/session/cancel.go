package session

import (
	"log/slog"
	"net/http"

	"CopperxBot/internal/lib/api/cont"
	"CopperxBot/internal/lib/api/response"
	"CopperxBot/internal/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type CancelResult struct {
	Cancelled bool `json:"cancelled"`
}

// Cancel clears the active flow of a user and notifies them in chat.
func Cancel(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		userID := chi.URLParam(r, "user_id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", userID),
			slog.String("operator", cont.GetUser(r.Context())),
		)

		cancelled, err := handler.CancelFlow(r.Context(), userID)
		if err != nil {
			logger.Error("cancel flow", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to cancel flow"))
			return
		}
		logger.Info("cancel flow", slog.Bool("cancelled", cancelled))

		render.JSON(w, r, response.Ok(CancelResult{Cancelled: cancelled}))
	}
}
