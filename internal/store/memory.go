package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/shortlinks/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[shortener.Code]*shortener.Link
	hashes map[ownerHash]shortener.Code
}

type ownerHash struct {
	owner shortener.OwnerID
	hash  shortener.URLHash
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[shortener.Code]*shortener.Link),
		hashes: make(map[ownerHash]shortener.Code),
	}
}

func (m *MemoryStore) Insert(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrDuplicateCode
	}

	key := ownerHash{owner: link.OwnerID, hash: link.URLHash}
	if link.URLHash != "" {
		if _, ok := m.hashes[key]; ok {
			return shortener.ErrDuplicateURL
		}

		m.hashes[key] = link.Code
	}

	stored := *link
	m.links[link.Code] = &stored

	return nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *link

	return &found, nil
}

func (m *MemoryStore) FindByOwner(_ context.Context, owner shortener.OwnerID) ([]*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*shortener.Link, 0)

	for _, link := range m.links {
		if link.OwnerID == owner {
			found := *link
			links = append(links, &found)
		}
	}

	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		}

		return links[i].Code < links[j].Code
	})

	return links, nil
}

func (m *MemoryStore) FindByOwnerAndHash(
	_ context.Context, owner shortener.OwnerID, hash shortener.URLHash,
) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.hashes[ownerHash{owner: owner, hash: hash}]
	if !ok || hash == "" {
		return nil, shortener.ErrNotFound
	}

	found := *m.links[code]

	return &found, nil
}

func (m *MemoryStore) IncrementVisit(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	link.VisitCount++
	updated := *link

	return &updated, nil
}

func (m *MemoryStore) DeleteByOwner(_ context.Context, code shortener.Code, owner shortener.OwnerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok || link.OwnerID != owner {
		return shortener.ErrNotFound
	}

	delete(m.links, code)

	if link.URLHash != "" {
		delete(m.hashes, ownerHash{owner: owner, hash: link.URLHash})
	}

	return nil
}

var _ shortener.Repository = (*MemoryStore)(nil)
