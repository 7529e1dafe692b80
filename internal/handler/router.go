package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/debtdesk/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware рабочего места.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/", h.Root)

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.GuestOnly(h.session))

		r.Get("/login", h.LoginScreen)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterScreen)
		r.Post("/register", h.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.RequireSession(h.session))

		r.Get("/me", h.Me)
		r.Post("/logout", h.Logout)

		r.Route("/debtors", func(r chi.Router) {
			r.Get("/", h.Debtors)
			r.Post("/", h.CreateDebt)
			r.Post("/reload", h.Reload)
			r.Post("/search", h.Search)
			r.Post("/sort", h.Sort)
			r.Post("/page", h.Page)
			r.Post("/form/open", h.OpenForm)
			r.Post("/form/close", h.CloseForm)
			r.Post("/delete/cancel", h.CancelDelete)
			r.Post("/{id}/delete", h.RequestDelete)
			r.Post("/{id}/delete/confirm", h.ConfirmDelete)
			r.Get("/{id}/whatsapp", h.WhatsApp)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
