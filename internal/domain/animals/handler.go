package animals

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gestion-bovina/internal/apperr"
	"gestion-bovina/internal/platform/httpjson"
	"gestion-bovina/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /vacas. El router debe aplicar el middleware de autenticación.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/vacas", func(vr chi.Router) {
		vr.Get("/", listAnimalsHandler(svc, log))
		vr.Get("/all", listAllAnimalsHandler(svc, log))
		vr.Get("/desactivadas", listInactiveAnimalsHandler(svc, log))
		vr.Post("/", createAnimalHandler(svc, log))

		vr.Get("/{id}", getAnimalHandler(svc, log))
		vr.Put("/{id}", updateAnimalHandler(svc, log))
		vr.Patch("/{id}", updateAnimalHandler(svc, log))
		vr.Delete("/{id}", destroyAnimalHandler(svc, log))
	})
}

// animalResponse representa una vaca devuelta por la API.
type animalResponse struct {
	ID        string    `json:"id" example:"6f1c2a4e-8a57-4a57-9a35-0f6b3f1f9f10"`
	Tag       int64     `json:"diio" example:"345671"`
	BirthDate time.Time `json:"dateBirthday" example:"2022-05-11T00:00:00Z"`
	Sex       Sex       `json:"genre" enums:"F,M" example:"F"`
	Breed     string    `json:"race" example:"Negra"`
	Location  string    `json:"location" example:"Talca"`
	Illness   *string   `json:"sick"`
	Active    bool      `json:"cowState" example:"true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// createAnimalRequest es el cuerpo para registrar una vaca. cowState se ignora: toda vaca nueva es activa.
type createAnimalRequest struct {
	Tag       *int64  `json:"diio" example:"345671"`
	BirthDate string  `json:"dateBirthday" example:"2022-05-11T00:00:00Z"`
	Sex       Sex     `json:"genre" enums:"F,M" example:"F"`
	Breed     string  `json:"race" example:"Negra"`
	Location  string  `json:"location" example:"Talca"`
	Illness   *string `json:"sick"`
	CowState  *bool   `json:"cowState" swaggerignore:"true"`
}

// updateAnimalRequest documenta el PATCH/PUT; todos los campos son opcionales.
type updateAnimalRequest struct {
	Tag       *int64  `json:"diio" example:"345671"`
	BirthDate *string `json:"dateBirthday" example:"2022-05-11T00:00:00Z"`
	Sex       *Sex    `json:"genre" enums:"F,M"`
	Breed     *string `json:"race" example:"Holstein"`
	Location  *string `json:"location" example:"Santiago"`
	Illness   *string `json:"sick" example:"Mastitis"`
}

type deleteAnimalResponse struct {
	Message string         `json:"message"`
	Animal  animalResponse `json:"vaca"`
}

// listAnimalsHandler godoc
// @Summary Listar vacas activas
// @Description Vacas con cowState = true. Filtros opcionales por DIIO y género. Sin resultados responde 404.
// @Tags vacas
// @Produce json
// @Security BearerAuth
// @Param diio query integer false "Filtrar por DIIO"
// @Param genre query string false "Filtrar por género" Enums(F, M)
// @Success 200 {array} animalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas [get]
func listAnimalsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseListFilter(r)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		items, err := svc.List(r.Context(), f)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toAnimalResponses(items))
	}
}

// listInactiveAnimalsHandler godoc
// @Summary Listar vacas desactivadas
// @Description Vacas con cowState = false. Mismos filtros que /vacas. Sin resultados responde 404.
// @Tags vacas
// @Produce json
// @Security BearerAuth
// @Param diio query integer false "Filtrar por DIIO"
// @Param genre query string false "Filtrar por género" Enums(F, M)
// @Success 200 {array} animalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas/desactivadas [get]
func listInactiveAnimalsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseListFilter(r)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		items, err := svc.ListInactive(r.Context(), f)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toAnimalResponses(items))
	}
}

// listAllAnimalsHandler godoc
// @Summary Listar todas las vacas
// @Description Activas e inactivas.
// @Tags vacas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} animalResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas/all [get]
func listAllAnimalsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.All(r.Context())
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toAnimalResponses(items))
	}
}

// getAnimalHandler godoc
// @Summary Obtener vaca activa por ID
// @Tags vacas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la vaca"
// @Success 200 {object} animalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas/{id} [get]
func getAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toAnimalResponse(a))
	}
}

// createAnimalHandler godoc
// @Summary Registrar vaca
// @Description Crea una vaca activa. El DIIO debe ser único (incluye vacas desactivadas).
// @Tags vacas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createAnimalRequest true "Datos de la vaca"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas [post]
func createAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAnimalRequest
		if err := httpjson.Decode(r, &req); err != nil {
			fail(w, r, log, err)
			return
		}
		if req.Tag == nil {
			fail(w, r, log, apperr.E(apperr.ErrInvalidArgument, "diio es requerido"))
			return
		}
		bd, err := parseDate(req.BirthDate)
		if err != nil {
			fail(w, r, log, err)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			Tag:       *req.Tag,
			BirthDate: bd,
			Sex:       req.Sex,
			Breed:     req.Breed,
			Location:  req.Location,
			Illness:   req.Illness,
		})
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// updateAnimalHandler godoc
// @Summary Actualizar vaca (PUT o PATCH)
// @Description Merge parcial: solo se modifican los campos enviados. "sick": null marca la vaca como sana.
// @Tags vacas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la vaca"
// @Param payload body updateAnimalRequest true "Campos a modificar"
// @Success 200 {object} animalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas/{id} [put]
// @Router /vacas/{id} [patch]
func updateAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := ParseID(id); err != nil {
			fail(w, r, log, err)
			return
		}

		var raw map[string]json.RawMessage
		if err := httpjson.Decode(r, &raw); err != nil {
			fail(w, r, log, err)
			return
		}
		p, err := decodePatch(raw)
		if err != nil {
			fail(w, r, log, err)
			return
		}

		a, err := svc.Update(r.Context(), id, p)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toAnimalResponse(a))
	}
}

// destroyAnimalHandler godoc
// @Summary Desactivar vaca
// @Description Soft delete: cowState pasa a false, el registro se conserva.
// @Tags vacas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la vaca"
// @Success 200 {object} deleteAnimalResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /vacas/{id} [delete]
func destroyAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		a, err := svc.Destroy(r.Context(), id)
		if err != nil {
			fail(w, r, log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, deleteAnimalResponse{
			Message: fmt.Sprintf("¡Vaca con ID '%s' eliminada con éxito!", id),
			Animal:  toAnimalResponse(a),
		})
	}
}

// fail loguea solo los errores internos; el resto son respuestas esperadas.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	if apperr.IsInternal(err) {
		log.Error("animals request failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
	}
	httpjson.Error(w, err)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("diio")); v != "" {
		tag, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return ListFilter{}, apperr.E(apperr.ErrInvalidArgument, "diio debe ser un entero")
		}
		f.Tag = &tag
	}
	if v := strings.TrimSpace(q.Get("genre")); v != "" {
		s := Sex(v)
		f.Sex = &s
	}
	return f, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.E(apperr.ErrInvalidArgument, "dateBirthday es requerido")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.E(apperr.ErrInvalidArgument, "dateBirthday debe ser RFC3339 o YYYY-MM-DD")
}

// decodePatch detecta presencia de cada campo para distinguir "no enviado" de null.
func decodePatch(raw map[string]json.RawMessage) (Patch, error) {
	var p Patch

	for key, v := range raw {
		isNull := string(v) == "null"

		switch key {
		case "diio":
			if isNull {
				return Patch{}, notNullable(key)
			}
			var tag int64
			if err := json.Unmarshal(v, &tag); err != nil {
				return Patch{}, apperr.E(apperr.ErrInvalidArgument, "diio debe ser un entero")
			}
			p.Tag = &tag
		case "dateBirthday":
			if isNull {
				return Patch{}, notNullable(key)
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return Patch{}, apperr.E(apperr.ErrInvalidArgument, "dateBirthday debe ser un string")
			}
			t, err := parseDate(s)
			if err != nil {
				return Patch{}, err
			}
			p.BirthDate = &t
		case "genre":
			s, err := patchString(key, v, isNull)
			if err != nil {
				return Patch{}, err
			}
			sex := Sex(*s)
			p.Sex = &sex
		case "race":
			s, err := patchString(key, v, isNull)
			if err != nil {
				return Patch{}, err
			}
			p.Breed = s
		case "location":
			s, err := patchString(key, v, isNull)
			if err != nil {
				return Patch{}, err
			}
			p.Location = s
		case "sick":
			p.Illness.Present = true
			if isNull {
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return Patch{}, apperr.E(apperr.ErrInvalidArgument, "sick debe ser un string o null")
			}
			p.Illness.Value = &s
		case "cowState":
			return Patch{}, apperr.E(apperr.ErrInvalidArgument, "cowState no se puede modificar; use DELETE /vacas/{id}")
		default:
			return Patch{}, apperr.E(apperr.ErrInvalidArgument, "campo desconocido %q", key)
		}
	}

	return p, nil
}

func patchString(key string, v json.RawMessage, isNull bool) (*string, error) {
	if isNull {
		return nil, notNullable(key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, apperr.E(apperr.ErrInvalidArgument, "%s debe ser un string", key)
	}
	return &s, nil
}

func notNullable(key string) error {
	return apperr.E(apperr.ErrInvalidArgument, "%s no puede ser null", key)
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:        a.ID,
		Tag:       a.Tag,
		BirthDate: a.BirthDate,
		Sex:       a.Sex,
		Breed:     a.Breed,
		Location:  a.Location,
		Illness:   a.Illness,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAnimalResponses(items []Animal) []animalResponse {
	out := make([]animalResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAnimalResponse(a))
	}
	return out
}
