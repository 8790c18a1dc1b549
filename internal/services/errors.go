package services

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindConstraint
	KindUpstream
)

// Error is what services hand back to handlers. Message is safe to show to
// the client; Err holds the internal cause and is only logged.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so wrapped copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConstraint:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrInvalidCredentials     = &Error{Kind: KindAuth, Code: "invalid_credentials", Message: "Credenciales inválidas"}
	ErrUnauthorized           = &Error{Kind: KindAuth, Code: "unauthorized", Message: "No autorizado"}
	ErrForbidden              = &Error{Kind: KindForbidden, Code: "forbidden", Message: "No tiene permiso sobre este inmueble"}
	ErrListingNotFound        = &Error{Kind: KindNotFound, Code: "listing_not_found", Message: "Inmueble no encontrado"}
	ErrSellerNotFound         = &Error{Kind: KindNotFound, Code: "seller_not_found", Message: "Vendedor no encontrado"}
	ErrMissingRequiredFields  = &Error{Kind: KindValidation, Code: "missing_required_fields", Message: "Faltan campos requeridos"}
	ErrInvalidSellerReference = &Error{Kind: KindConstraint, Code: "invalid_seller_reference", Message: "Vendedor no válido"}
	ErrStorageNotConfigured   = &Error{Kind: KindUpstream, Code: "storage_not_configured", Message: "El almacenamiento de imágenes no está configurado"}
)

func validationError(code, message string) error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func upstreamError(code string, err error) error {
	return &Error{Kind: KindUpstream, Code: code, Message: "Error interno del servidor", Err: err}
}

// AsError extracts the service error, if any, from an error chain.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
