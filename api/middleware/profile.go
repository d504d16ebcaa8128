package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/api/responses"
	pkgAuth "github.com/jobpay/jobpay-backend/pkg/auth"
	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

// ProfileLoader resolves the caller's profile row.
type ProfileLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Profile resolves the calling profile from a bearer token (when JWT is
// configured) or from the configured profile header, loads it, and seeds the
// request context. Missing or unknown profiles are rejected with 401.
func Profile(cfg *config.Config, loader ProfileLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if loader == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile lookup unavailable"))
				return
			}

			profileID, err := callerProfileID(cfg, r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			profile, err := loader.FindByID(r.Context(), profileID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown profile"))
					return
				}
				responses.WriteError(r.Context(), logg, w, db.WrapStoreError(err, "load profile"))
				return
			}

			ctx := WithProfileID(r.Context(), profile.ID)
			ctx = WithRole(ctx, string(profile.Role))
			if logg != nil {
				ctx = logg.WithProfileID(ctx, profile.ID.String())
				ctx = logg.WithActorRole(ctx, string(profile.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerProfileID(cfg *config.Config, r *http.Request) (uuid.UUID, error) {
	if cfg != nil && cfg.JWT.Enabled() {
		if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
			}
			claims, err := pkgAuth.ParseAccessToken(cfg.JWT, token)
			if err != nil {
				return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
			}
			return claims.ProfileID, nil
		}
	}

	header := "profile_id"
	if cfg != nil && strings.TrimSpace(cfg.Access.ProfileHeader) != "" {
		header = cfg.Access.ProfileHeader
	}
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid profile id")
	}
	return id, nil
}
