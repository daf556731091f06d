package shortener

import (
	"fmt"
	"regexp"

	"github.com/jaevor/go-nanoid"
)

const (
	// MinCodeLength is the shortest accepted code.
	MinCodeLength = 3
	// MaxCodeLength is the longest accepted code.
	MaxCodeLength = 20
	// DefaultCodeLength is the length of randomly generated codes.
	DefaultCodeLength = 8
)

var codeAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedCodes are first path segments the router serves itself. A link
// under one of them could never be reached.
var reservedCodes = map[string]struct{}{
	"api":     {},
	"docs":    {},
	"health":  {},
	"openapi": {},
	"schemas": {},
}

// IsReserved reports whether code collides with a route of the service.
func IsReserved(code string) bool {
	_, ok := reservedCodes[code]

	return ok
}

// ValidateCode checks length and alphabet of a short code.
func ValidateCode(code string) error {
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return fmt.Errorf("%w: code must be between %d and %d characters",
			ErrInvalidFormat, MinCodeLength, MaxCodeLength)
	}

	if !codeAlphabet.MatchString(code) {
		return fmt.Errorf("%w: code may only contain letters, digits, '_' and '-'", ErrInvalidFormat)
	}

	return nil
}

// CodeGenerator produces a random candidate code.
type CodeGenerator func() string

// Generator turns a requested code, or nothing, into a well-formed candidate.
// It never checks uniqueness.
type Generator struct {
	generateCode CodeGenerator
}

// NewGenerator wraps a random source.
func NewGenerator(generator CodeGenerator) *Generator {
	return &Generator{generateCode: generator}
}

// NewNanoIDGenerator builds a Generator over nanoid's URL-safe alphabet.
// Lengths outside the accepted range are clamped.
func NewNanoIDGenerator(length int) (*Generator, error) {
	length = max(MinCodeLength, min(length, MaxCodeLength))

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return NewGenerator(gen), nil
}

// Generate validates requested when present, otherwise draws a random code.
func (g *Generator) Generate(requested string) (Code, error) {
	if requested != "" {
		if err := ValidateCode(requested); err != nil {
			return "", err
		}

		return Code(requested), nil
	}

	return Code(g.generateCode()), nil
}
