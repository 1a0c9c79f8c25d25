package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/confspace/conference-service/internal/transport/ws"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// realtime endpoint; signaling, presence and chat ride this connection
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/api/rooms", func(rm chi.Router) {
		rm.Use(middlewareChi.Timeout(30 * time.Second))

		rm.Post("/", h.CreateRoom)
		rm.Get("/", h.ListRooms)

		rm.Route("/{roomId}", func(rr chi.Router) {
			rr.Get("/", h.GetRoom)
			rr.Post("/join", h.JoinRoom)
			rr.Post("/leave", h.LeaveRoom)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
