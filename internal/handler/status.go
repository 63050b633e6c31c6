package handler

import (
	"net/http"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// statusCode maps an auth outcome to its HTTP status.
func statusCode(status domain.AuthStatus) int {
	switch status {
	case domain.StatusSuccess:
		return http.StatusOK
	case domain.StatusInvalidCredentials, domain.StatusInvalidToken, domain.StatusRefreshTokenInvalid:
		return http.StatusUnauthorized
	case domain.StatusUserNotFound:
		return http.StatusNotFound
	case domain.StatusInvalidData, domain.StatusRefreshTokenMissing:
		return http.StatusBadRequest
	case domain.StatusRequiresPhone:
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}
