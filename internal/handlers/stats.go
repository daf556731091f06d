package handlers

import (
	"context"

	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/stats"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// StatsHandler serves the caller's dashboard figures.
type StatsHandler struct {
	aggregator *stats.Aggregator
	baseURL    string
	logger     *zap.Logger
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(aggregator *stats.Aggregator, baseURL string, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{aggregator: aggregator, baseURL: baseURL, logger: logger}
}

func (h *StatsHandler) Summary(ctx context.Context, _ *struct{}) (*SummaryResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "summary", err)
	}

	summary, err := h.aggregator.Summarize(ctx, owner)
	if err != nil {
		return nil, httpError(h.logger, "summary", err)
	}

	resp := &SummaryResponse{}
	resp.Body.TotalLinks = summary.TotalLinks
	resp.Body.TotalVisits = summary.TotalVisits
	resp.Body.RecentLinks = linkBodies(h.baseURL, summary.RecentLinks)
	resp.Body.TopLinksByVisits = linkBodies(h.baseURL, summary.TopLinks)

	return resp, nil
}

func (h *StatsHandler) Top(ctx context.Context, _ *struct{}) (*ListResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "top links", err)
	}

	links, err := h.aggregator.TopLinks(ctx, owner)
	if err != nil {
		return nil, httpError(h.logger, "top links", err)
	}

	return &ListResponse{Body: linkBodies(h.baseURL, links)}, nil
}

func (h *StatsHandler) Daily(ctx context.Context, req *DailyRequest) (*DailyResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, httpError(h.logger, "daily visits", err)
	}

	days, err := h.aggregator.Daily(ctx, owner, req.Days)
	if err != nil {
		return nil, httpError(h.logger, "daily visits", err)
	}

	body := make([]DailyBody, 0, len(days))
	for _, day := range days {
		body = append(body, DailyBody{Date: day.Date.Format(dateLayout), Visits: day.Visits})
	}

	return &DailyResponse{Body: body}, nil
}
