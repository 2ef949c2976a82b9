package users

import (
	"net/http"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/platform/httpjson"
	"gestion-bovina/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /register y /login (sin autenticación).
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/register", registerHandler(svc, log))
	r.Post("/login", loginHandler(svc, log))
}

// registerRequest: "rol" se acepta como alias de "role".
type registerRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"p1"`
	Role     string `json:"role" enums:"admin,user" example:"user"`
	Rol      string `json:"rol,omitempty" swaggerignore:"true"`
}

type loginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"p1"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea el usuario y devuelve un token para login inmediato.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Credenciales y rol"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		role := req.Role
		if role == "" {
			role = req.Rol
		}

		token, u, err := svc.Register(r.Context(), RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Role:     Role(role),
		})
		if err != nil {
			if apperr.IsInternal(err) {
				log.Error("register failed", map[string]any{"error": err.Error()})
			}
			httpjson.Error(w, err)
			return
		}

		log.Info("user registered", map[string]any{"user_id": u.ID, "role": string(u.Role)})
		httpjson.Write(w, http.StatusCreated, tokenResponse{Token: token})
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Description Mismo 401 para email inexistente y password incorrecta.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if apperr.IsInternal(err) {
				log.Error("login failed", map[string]any{"error": err.Error()})
			}
			httpjson.Error(w, err)
			return
		}

		httpjson.Write(w, http.StatusOK, tokenResponse{Token: token})
	}
}
