package visits

import "time"

const (
	// TopicLinkCreated carries LinkCreatedEvent messages.
	TopicLinkCreated = "link.created"
	// TopicLinkVisited carries LinkVisitedEvent messages.
	TopicLinkVisited = "link.visited"
)

// LinkCreatedEvent is emitted when a shorten request creates a link.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	OwnerID     string    `json:"ownerId"`
	URLHash     string    `json:"urlHash,omitempty"`
	Strategy    string    `json:"strategy"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkVisitedEvent is emitted after a successful redirect.
type LinkVisitedEvent struct {
	Code       string    `json:"code"`
	OwnerID    string    `json:"ownerId"`
	VisitCount int64     `json:"visitCount"`
	VisitedAt  time.Time `json:"visitedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}
