package controllers

import (
	"context"
	"net/http"

	"github.com/safariconnector/backend/api/responses"
	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/internal/auth"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
)

// AuthLogin handles traveller and operator logins.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return loginHandler(logg, svc, func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.Login(ctx, req)
	})
}

// AdminAuthLogin handles the admin console login. It shares the request
// shape with AuthLogin but the service only accepts admin accounts.
func AdminAuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return loginHandler(logg, svc, func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.AdminLogin(ctx, req)
	})
}

func loginHandler(logg *logger.Logger, svc auth.Service, login func(context.Context, auth.LoginRequest) (*auth.LoginResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
