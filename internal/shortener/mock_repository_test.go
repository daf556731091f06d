package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/shortlinks/internal/shortener"
)

var errBackend = errors.New("connection refused")

// mockRepository is a Repository test double with scripted failures.
type mockRepository struct {
	insertErrs    []error
	insertCalls   int
	findErr       error
	findLink      *shortener.Link
	hashResults   []*shortener.Link
	incrementErr  error
	incrementLink *shortener.Link
	incremented   []shortener.Code
	inserted      []*shortener.Link
}

func (m *mockRepository) Insert(_ context.Context, link *shortener.Link) error {
	m.insertCalls++

	if len(m.insertErrs) > 0 {
		err := m.insertErrs[0]
		m.insertErrs = m.insertErrs[1:]

		if err != nil {
			return err
		}
	}

	m.inserted = append(m.inserted, link)

	return nil
}

func (m *mockRepository) FindByCode(_ context.Context, _ shortener.Code) (*shortener.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	if m.findLink == nil {
		return nil, shortener.ErrNotFound
	}

	return m.findLink, nil
}

func (m *mockRepository) FindByOwner(_ context.Context, _ shortener.OwnerID) ([]*shortener.Link, error) {
	return m.inserted, nil
}

func (m *mockRepository) FindByOwnerAndHash(
	_ context.Context, _ shortener.OwnerID, _ shortener.URLHash,
) (*shortener.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	if len(m.hashResults) > 0 {
		link := m.hashResults[0]
		m.hashResults = m.hashResults[1:]

		if link != nil {
			return link, nil
		}
	}

	return nil, shortener.ErrNotFound
}

func (m *mockRepository) IncrementVisit(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.incremented = append(m.incremented, code)

	if m.incrementErr != nil {
		return nil, m.incrementErr
	}

	return m.incrementLink, nil
}

func (m *mockRepository) DeleteByOwner(_ context.Context, _ shortener.Code, _ shortener.OwnerID) error {
	return nil
}
