package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds de error del dominio.
// Solo la capa HTTP los traduce a status codes (ver Status).
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
)

// Error asocia un mensaje apto para el cliente a una kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

// E construye un *Error de la kind indicada.
func E(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ErrInvalidCredentials se usa tanto para email inexistente como para password incorrecta,
// así no se filtra qué cuentas existen.
var ErrInvalidCredentials = E(ErrUnauthorized, "usuario y/o contraseña inválida")

// Status traduce un error a HTTP status. Cualquier error sin kind conocido es 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal indica si el error no pertenece a ninguna kind conocida.
func IsInternal(err error) bool {
	return err != nil && Status(err) == http.StatusInternalServerError
}
