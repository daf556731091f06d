package handlers

import (
	"time"

	"github.com/serroba/shortlinks/internal/shortener"
)

// LinkBody is the wire form of a link.
type LinkBody struct {
	ShortCode   string    `doc:"The short code"           example:"abc123"                             json:"shortCode"`
	OriginalURL string    `doc:"The original URL"         example:"https://example.com/very/long/path" json:"originalUrl"`
	ShortURL    string    `doc:"The full short URL"       example:"http://localhost:8888/abc123"       json:"shortUrl"`
	VisitCount  int64     `doc:"Number of redirects"      example:"0"                                  json:"visitCount"`
	CreatedAt   time.Time `doc:"Creation time"                                                         json:"createdAt"`
}

// ShortenRequest is the request for creating a short link.
type ShortenRequest struct {
	Body struct {
		OriginalURL string `doc:"The URL to shorten"                      example:"https://example.com/very/long/path" json:"originalUrl" required:"false"`
		CustomCode  string `doc:"Optional custom code, 3-20 URL-safe chars" example:"my-link"                        json:"customCode,omitempty"`
		Strategy    string `doc:"token (default) or hash"                 example:"token"                              json:"strategy,omitempty"`
	}
}

// LinkResponse returns one link. Status is 201 when it was created and 200
// when the hash strategy returned an existing one.
type LinkResponse struct {
	Status   int
	Location string `doc:"The short URL" header:"Location"`
	Body     LinkBody
}

// CodeRequest addresses a link by its short code.
type CodeRequest struct {
	ShortCode string `doc:"The short code" example:"abc123" path:"shortCode"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ListResponse lists links.
type ListResponse struct {
	Body []LinkBody
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Body struct {
		Message string `example:"Link deleted" json:"message"`
	}
}

// AvailabilityResponse answers whether a short code can be claimed.
type AvailabilityResponse struct {
	Body struct {
		ShortCode string `json:"shortCode"`
		Available bool   `json:"available"`
		Reason    string `json:"reason,omitempty"`
	}
}

// QRRequest asks for a QR code of a short link.
type QRRequest struct {
	ShortCode string `doc:"The short code"                path:"shortCode"`
	Size      int    `doc:"Image width and height in px" default:"256"   query:"size"`
}

// QRResponse is a PNG image.
type QRResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// SummaryResponse is the dashboard summary of the caller's links.
type SummaryResponse struct {
	Body struct {
		TotalLinks       int        `json:"totalLinks"`
		TotalVisits      int64      `json:"totalVisits"`
		RecentLinks      []LinkBody `json:"recentLinks"`
		TopLinksByVisits []LinkBody `json:"topLinksByVisits"`
	}
}

// DailyRequest selects the daily visits window.
type DailyRequest struct {
	Days int `doc:"Number of days, today included (1-365)" default:"30" query:"days"`
}

// DailyBody is the visit count of one UTC day.
type DailyBody struct {
	Date   string `example:"2024-03-10" json:"date"`
	Visits int64  `example:"12"         json:"visits"`
}

// DailyResponse lists per-day visit counts, oldest first.
type DailyResponse struct {
	Body []DailyBody
}

// CredentialsRequest carries a username and password.
type CredentialsRequest struct {
	Body struct {
		Username string `example:"alice"   json:"username" required:"false"`
		Password string `example:"Secr3t!" json:"password" required:"false"`
	}
}

// TokenResponse carries an access token.
type TokenResponse struct {
	Body struct {
		Token string `doc:"Bearer access token" json:"token"`
	}
}

// SignupResponse carries the token of a new account.
type SignupResponse struct {
	Status int
	Body   struct {
		Token string `doc:"Bearer access token" json:"token"`
	}
}

// MeResponse describes the authenticated account.
type MeResponse struct {
	Body struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"createdAt"`
	}
}

func linkBody(baseURL string, link *shortener.Link) LinkBody {
	return LinkBody{
		ShortCode:   string(link.Code),
		OriginalURL: link.OriginalURL,
		ShortURL:    shortURL(baseURL, link.Code),
		VisitCount:  link.VisitCount,
		CreatedAt:   link.CreatedAt,
	}
}

func linkBodies(baseURL string, links []*shortener.Link) []LinkBody {
	bodies := make([]LinkBody, 0, len(links))
	for _, link := range links {
		bodies = append(bodies, linkBody(baseURL, link))
	}

	return bodies
}

func shortURL(baseURL string, code shortener.Code) string {
	return baseURL + "/" + string(code)
}
