package key

import (
	"log/slog"
	"net/http"

	"CopperxBot/internal/lib/api/response"
	"CopperxBot/internal/lib/sl"
	"CopperxBot/internal/lib/validate"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

type GenerateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
}

type GenerateResponse struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Generate issues an operations API key for a username.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Key storage not available"))
			return
		}

		var req GenerateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		key, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generate api key", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}
		logger.Info("api key issued", slog.String("username", req.Username))

		render.JSON(w, r, response.Ok(GenerateResponse{Username: req.Username, Key: key}))
	}
}
