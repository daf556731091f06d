package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	valid := []string{"abc", "my-link", "my_link_2024", strings.Repeat("a", 20), "A-b_9"}

	for _, code := range valid {
		t.Run("accepts "+code, func(t *testing.T) {
			assert.NoError(t, shortener.ValidateCode(code))
		})
	}

	invalid := []string{"", "ab", strings.Repeat("a", 21), "has space", "slash/code", "dot.code", "ünï"}

	for _, code := range invalid {
		t.Run("rejects "+code, func(t *testing.T) {
			assert.ErrorIs(t, shortener.ValidateCode(code), shortener.ErrInvalidFormat)
		})
	}
}

func TestIsReserved(t *testing.T) {
	assert.True(t, shortener.IsReserved("health"))
	assert.True(t, shortener.IsReserved("docs"))
	assert.False(t, shortener.IsReserved("Health"))
	assert.False(t, shortener.IsReserved("healthy"))
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("returns a valid requested code unchanged", func(t *testing.T) {
		gen := shortener.NewGenerator(func() string { return "random" })

		code, err := gen.Generate("my-link")

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("my-link"), code)
	})

	t.Run("rejects a malformed requested code", func(t *testing.T) {
		gen := shortener.NewGenerator(func() string { return "random" })

		_, err := gen.Generate("no")

		assert.ErrorIs(t, err, shortener.ErrInvalidFormat)
	})

	t.Run("draws a random code when none is requested", func(t *testing.T) {
		gen := shortener.NewGenerator(func() string { return "random" })

		code, err := gen.Generate("")

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("random"), code)
	})
}

func TestNewNanoIDGenerator(t *testing.T) {
	t.Run("produces valid codes of the configured length", func(t *testing.T) {
		gen, err := shortener.NewNanoIDGenerator(shortener.DefaultCodeLength)
		require.NoError(t, err)

		for range 200 {
			code, err := gen.Generate("")

			require.NoError(t, err)
			assert.Len(t, string(code), shortener.DefaultCodeLength)
			assert.NoError(t, shortener.ValidateCode(string(code)))
		}
	})

	t.Run("clamps lengths into the accepted range", func(t *testing.T) {
		short, err := shortener.NewNanoIDGenerator(1)
		require.NoError(t, err)

		long, err := shortener.NewNanoIDGenerator(64)
		require.NoError(t, err)

		shortCode, _ := short.Generate("")
		longCode, _ := long.Generate("")

		assert.Len(t, string(shortCode), shortener.MinCodeLength)
		assert.Len(t, string(longCode), shortener.MaxCodeLength)
	})
}
