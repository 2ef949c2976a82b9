package router

import (
	"net/http"

	_ "gestion-bovina/docs"
	"gestion-bovina/internal/domain/animals"
	"gestion-bovina/internal/domain/users"
	"gestion-bovina/internal/middleware"
	"gestion-bovina/internal/platform/httpjson"
	"gestion-bovina/internal/platform/logger"
	"gestion-bovina/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Animals *animals.Service
	Users   *users.Service

	// Verifier valida la firma de los bearer tokens de /vacas.
	Verifier auth.AuthVerifier

	// Logger opcional; si es nil no se loguea.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Message(w, http.StatusNotFound, "Ruta no encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Message(w, http.StatusMethodNotAllowed, "Método no permitido")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Públicas
	users.RegisterRoutes(r, opts.Users, log)

	// Protegidas
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Authenticate(opts.Verifier, opts.Users, log))
		animals.RegisterRoutes(pr, opts.Animals, log)
	})

	return r
}
