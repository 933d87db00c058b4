package controllers

import (
	"net/http"

	"github.com/richrisemansion/ebook-pop/api/responses"
	"github.com/richrisemansion/ebook-pop/api/validators"
	authsvc "github.com/richrisemansion/ebook-pop/internal/auth"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin authenticates the back-office account and returns a bearer
// token.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}
