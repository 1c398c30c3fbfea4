package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arti-ci/sygfp/internal/http/auth"
	"github.com/arti-ci/sygfp/internal/http/budgetline"
	"github.com/arti-ci/sygfp/internal/http/importbudget"
)

func New(
	importV1 *importbudget.Handler,
	budgetLinesV1 *budgetline.Handler,
	allowedOrigins []string,
	jwtSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/import", importV1.Routes)

		r.Route("/budget-lines", func(r chi.Router) {
			budgetLinesV1.Routes(r)
		})
	})

	return router
}
