package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL accepts absolute http and https URLs that name a host.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidFormat)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: url must be an absolute http or https url", ErrInvalidFormat)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("%w: url must include a host", ErrInvalidFormat)
	}

	return nil
}

// NormalizeURL rewrites a URL so equivalent spellings hash the same:
// lowercase scheme and host, no default port, no trailing slash, no fragment.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// HashURL returns the hex SHA-256 of a normalized URL.
func HashURL(normalizedURL string) URLHash {
	sum := sha256.Sum256([]byte(normalizedURL))

	return URLHash(hex.EncodeToString(sum[:]))
}
