package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/middleware"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/visits"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

// LinkHandler serves shortening, redirects and link management.
type LinkHandler struct {
	links          *shortener.Service
	baseURL        string
	publishCreated messaging.Publish[visits.LinkCreatedEvent]
	publishVisited messaging.Publish[visits.LinkVisitedEvent]
	logger         *zap.Logger
	now            func() time.Time
}

// NewLinkHandler creates a link handler. Short URLs are built as baseURL/code.
func NewLinkHandler(
	links *shortener.Service,
	baseURL string,
	publishCreated messaging.Publish[visits.LinkCreatedEvent],
	publishVisited messaging.Publish[visits.LinkVisitedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		links:          links,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		publishVisited: publishVisited,
		logger:         logger,
		now:            time.Now,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*LinkResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "shorten", err)
	}

	link, created, err := h.links.Shorten(ctx, shortener.ShortenRequest{
		Owner:      owner,
		URL:        req.Body.OriginalURL,
		CustomCode: req.Body.CustomCode,
		Strategy:   shortener.Strategy(req.Body.Strategy),
	})
	if err != nil {
		return nil, httpError(h.logger, "shorten", err)
	}

	resp := &LinkResponse{
		Status:   http.StatusOK,
		Location: shortURL(h.baseURL, link.Code),
		Body:     linkBody(h.baseURL, link),
	}

	if !created {
		return resp, nil
	}

	resp.Status = http.StatusCreated

	strategy := req.Body.Strategy
	if strategy == "" {
		strategy = string(shortener.StrategyToken)
	}

	meta := middleware.ClientMetaFromContext(ctx)
	event := &visits.LinkCreatedEvent{
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		OwnerID:     string(link.OwnerID),
		URLHash:     string(link.URLHash),
		Strategy:    strategy,
		CreatedAt:   link.CreatedAt,
		ClientIP:    meta.IP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	link, err := h.links.Resolve(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		return nil, httpError(h.logger, "resolve", err)
	}

	meta := middleware.ClientMetaFromContext(ctx)
	event := &visits.LinkVisitedEvent{
		Code:       string(link.Code),
		OwnerID:    string(link.OwnerID),
		VisitCount: link.VisitCount,
		VisitedAt:  h.now().UTC(),
		ClientIP:   meta.IP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishVisited(ctx, event); err != nil {
		h.logger.Error("failed to publish link visited event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.OriginalURL,
	}, nil
}

func (h *LinkHandler) List(ctx context.Context, _ *struct{}) (*ListResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "list links", err)
	}

	links, err := h.links.ListByOwner(ctx, owner)
	if err != nil {
		return nil, httpError(h.logger, "list links", err)
	}

	return &ListResponse{Body: linkBodies(h.baseURL, links)}, nil
}

func (h *LinkHandler) Delete(ctx context.Context, req *CodeRequest) (*MessageResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "delete link", err)
	}

	if err := h.links.Delete(ctx, owner, shortener.Code(req.ShortCode)); err != nil {
		return nil, httpError(h.logger, "delete link", err)
	}

	resp := &MessageResponse{}
	resp.Body.Message = "Link deleted"

	return resp, nil
}

func (h *LinkHandler) Availability(ctx context.Context, req *CodeRequest) (*AvailabilityResponse, error) {
	availability, err := h.links.IsAvailable(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		return nil, httpError(h.logger, "check availability", err)
	}

	resp := &AvailabilityResponse{}
	resp.Body.ShortCode = string(availability.Code)
	resp.Body.Available = availability.Available
	resp.Body.Reason = availability.Reason

	return resp, nil
}

func (h *LinkHandler) QRCode(ctx context.Context, req *QRRequest) (*QRResponse, error) {
	if req.Size < minQRSize || req.Size > maxQRSize {
		return nil, httpError(h.logger, "qr code",
			fmt.Errorf("%w: size must be between %d and %d", shortener.ErrInvalidFormat, minQRSize, maxQRSize))
	}

	link, err := h.links.Lookup(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		return nil, httpError(h.logger, "qr code", err)
	}

	png, err := qrcode.Encode(shortURL(h.baseURL, link.Code), qrcode.Medium, req.Size)
	if err != nil {
		return nil, httpError(h.logger, "qr code", fmt.Errorf("encode qr: %w", err))
	}

	return &QRResponse{ContentType: "image/png", Body: png}, nil
}
