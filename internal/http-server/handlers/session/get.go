package session

import (
	"log/slog"
	"net/http"
	"time"

	"CopperxBot/internal/lib/api/response"
	"CopperxBot/internal/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		userID := chi.URLParam(r, "user_id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", userID),
		)

		sess, err := handler.Session(r.Context(), userID)
		if err != nil {
			logger.Error("get session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load session"))
			return
		}
		if sess == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Session not found"))
			return
		}

		render.JSON(w, r, response.Ok(NewView(sess, time.Now())))
	}
}
