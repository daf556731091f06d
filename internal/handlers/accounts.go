package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"go.uber.org/zap"
)

// AccountHandler serves signup, login and the current account.
type AccountHandler struct {
	accounts     *auth.Service
	loginLimiter ratelimit.Limiter
	logger       *zap.Logger
}

// NewAccountHandler creates an account handler. loginLimiter throttles login
// attempts per username.
func NewAccountHandler(accounts *auth.Service, loginLimiter ratelimit.Limiter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, loginLimiter: loginLimiter, logger: logger}
}

func (h *AccountHandler) Signup(ctx context.Context, req *CredentialsRequest) (*SignupResponse, error) {
	token, user, err := h.accounts.Signup(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		return nil, httpError(h.logger, "signup", err)
	}

	h.logger.Info("account created", zap.String("user_id", user.ID))

	resp := &SignupResponse{Status: http.StatusCreated}
	resp.Body.Token = token

	return resp, nil
}

func (h *AccountHandler) Login(ctx context.Context, req *CredentialsRequest) (*TokenResponse, error) {
	allowed, err := h.loginLimiter.Allow(ctx, strings.ToLower(req.Body.Username))
	if err != nil {
		return nil, httpError(h.logger, "login throttle", err)
	}

	if !allowed {
		return nil, huma.Error429TooManyRequests("too many login attempts, try again later")
	}

	token, err := h.accounts.Login(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		return nil, httpError(h.logger, "login", err)
	}

	resp := &TokenResponse{}
	resp.Body.Token = token

	return resp, nil
}

func (h *AccountHandler) Me(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "me", err)
	}

	user, err := h.accounts.Me(ctx, string(owner))
	if err != nil {
		return nil, httpError(h.logger, "me", err)
	}

	resp := &MeResponse{}
	resp.Body.ID = user.ID
	resp.Body.Username = user.Username
	resp.Body.CreatedAt = user.CreatedAt

	return resp, nil
}
