package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gestion-bovina/internal/apperr"
)

// maxBody limita el tamaño de los payloads JSON aceptados.
const maxBody = 1 << 20

// ErrorResponse es el cuerpo de todas las respuestas de error.
type ErrorResponse struct {
	Message string `json:"message" example:"Error al procesar la solicitud"`
}

// MessageInternal se devuelve en lugar del detalle de errores inesperados.
const MessageInternal = "Error interno del servidor"

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorResponse{Message: msg})
}

// Error escribe err con el status de su kind. Los errores internos nunca exponen su texto.
func Error(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		Message(w, status, MessageInternal)
		return
	}
	Message(w, status, err.Error())
}

// Decode lee un JSON estricto (campos desconocidos o contenido extra => InvalidArgument).
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.E(apperr.ErrInvalidArgument, "el cuerpo de la solicitud está vacío")
		}
		return apperr.E(apperr.ErrInvalidArgument, "JSON inválido: %v", err)
	}
	// Un solo valor JSON por cuerpo.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.E(apperr.ErrInvalidArgument, "JSON inválido: contenido extra después del objeto")
	}
	return nil
}
