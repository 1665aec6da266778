package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// loginErrorCases keeps "user not found" and "invalid credentials"
// distinguishable; the catalog is an internal directory, not a public
// signup surface, and operators rely on the distinction.
var loginErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusUnauthorized, Message: "user not found"},
	{Err: usecase.ErrRoleMismatch, Status: http.StatusForbidden, Message: "account does not hold the requested role"},
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
	{Err: usecase.ErrCatalogUnavailable, Status: http.StatusServiceUnavailable, Message: "user catalog unavailable"},
}

var resetErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrNoChallenge, Status: http.StatusConflict, Message: "no reset code outstanding"},
	{Err: usecase.ErrChallengeExpired, Status: http.StatusGone, Message: "reset code expired"},
	{Err: usecase.ErrCodeMismatch, Status: http.StatusUnauthorized, Message: "reset code incorrect"},
	{Err: usecase.ErrCatalogUnavailable, Status: http.StatusServiceUnavailable, Message: "user catalog unavailable"},
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
