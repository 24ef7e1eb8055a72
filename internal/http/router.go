package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pocket/internal/http/budget"
	"github.com/MrJamesThe3rd/pocket/internal/http/goal"
	"github.com/MrJamesThe3rd/pocket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocket/internal/http/overview"
	"github.com/MrJamesThe3rd/pocket/internal/http/reference"
	"github.com/MrJamesThe3rd/pocket/internal/http/transaction"
)

type Handlers struct {
	Overview     *overview.Handler
	Transactions *transaction.Handler
	Reference    *reference.Handler
	Budgets      *budget.Handler
	Goals        *goal.Handler
	Import       *importcsv.Handler
}

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Authenticate guards every /api/v1 route.
	Authenticate func(http.Handler) http.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Authenticate != nil {
			r.Use(opts.Authenticate)
		}

		r.Route("/overview", h.Overview.Routes)

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/categories", h.Reference.CategoryRoutes)
		r.Route("/payees", h.Reference.PayeeRoutes)
		r.Route("/reference/refresh", h.Reference.RefreshRoutes)

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Goals.Routes(r)
		})

		r.Route("/import", h.Import.Routes)
	})

	return router
}
