package health

import (
	"net/http"
	"time"

	"CopperxBot/internal/lib/api/response"

	"github.com/go-chi/render"
)

type Status struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Clients int    `json:"ws_clients"`
}

// Clients reports the number of connected event stream clients.
type Clients interface {
	Clients() int
}

func Health(started time.Time, clients Clients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status{
			Status: "ok",
			Uptime: time.Since(started).Truncate(time.Second).String(),
		}
		if clients != nil {
			st.Clients = clients.Clients()
		}
		render.JSON(w, r, response.Ok(st))
	}
}
