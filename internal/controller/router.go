package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", c.createRoom)
			r.Route("/{room-id}", func(r chi.Router) {
				r.Get("/", c.getRoom)
				r.Get("/status", c.getRoomStatus)
				r.Post("/join", c.joinRoom)
				r.Post("/leave", c.leaveRoom)
				r.Post("/trigger", c.triggerRendering)
				r.Post("/start", c.startRendering)
				r.Post("/stop", c.stopRendering)
				r.Get("/events", c.subscribeEvents)
				r.Route("/files", func(r chi.Router) {
					r.Get("/", c.listBlendFiles)
					r.Post("/", c.uploadBlendFile)
					r.Get("/{file-name}", c.downloadBlendFile)
					r.Delete("/{file-name}", c.removeBlendFile)
				})
				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", c.getTasks)
					r.Get("/next", c.getNextTask)
					r.Patch("/{task-id}", c.updateTask)
					r.Post("/{task-id}/results", c.uploadTaskResult)
				})
				r.Route("/renderlog", func(r chi.Router) {
					r.Get("/", c.getFrameLog)
					r.Post("/", c.appendFrameLog)
				})
				r.Route("/final", func(r chi.Router) {
					r.Get("/", c.listFinalFiles)
					r.Get("/{file-name}", c.downloadFinalFile)
				})
			})
		})
	})

	return r
}
