package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/api/middleware"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

func callerID(r *http.Request) (uuid.UUID, error) {
	id := middleware.ProfileIDFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing")
	}
	return id, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
