package shortener

// Strategy selects how a shorten request allocates its code.
type Strategy string

const (
	// StrategyToken always allocates a fresh code.
	StrategyToken Strategy = "token"
	// StrategyHash returns the owner's existing link for an equivalent URL.
	StrategyHash Strategy = "hash"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyToken || s == StrategyHash
}
