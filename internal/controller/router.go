package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/", c.getIndex)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", c.getHealthz)
		r.Get("/rooms", c.getRooms)
		r.Get("/users", c.getUsers)
		r.HandleFunc("/ws", c.serveWS)
	})

	return r
}
