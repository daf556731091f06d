package middleware

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// BearerScheme is the security scheme name operations use to require a token.
const BearerScheme = "bearer"

// TokenAuthenticator resolves a bearer token to a user ID.
type TokenAuthenticator interface {
	Authenticate(token string) (string, error)
}

// Authenticate rejects requests without a valid bearer token on operations
// that declare the bearer security requirement, and stores the caller as the
// link owner in the context. Other operations pass through untouched.
func Authenticate(
	api huma.API,
	authenticator TokenAuthenticator,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresBearer(ctx.Operation()) {
			next(ctx)

			return
		}

		token, err := auth.BearerToken(ctx.Header("Authorization"))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")

			return
		}

		userID, err := authenticator.Authenticate(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}

			logger.Debug("rejected bearer token", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)

			return
		}

		next(huma.WithContext(ctx, auth.ContextWithOwner(ctx.Context(), shortener.OwnerID(userID))))
	}
}

func requiresBearer(op *huma.Operation) bool {
	if op == nil {
		return false
	}

	for _, requirement := range op.Security {
		if _, ok := requirement[BearerScheme]; ok {
			return true
		}
	}

	return false
}
