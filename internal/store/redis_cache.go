package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/shortener"
)

// RedisCacheRepository wraps a Repository with a Redis read-through cache.
// Inserts and visit increments write through; deletes invalidate. The cached
// visit_count only moves up, so out-of-order increments never lower it.
type RedisCacheRepository struct {
	store      shortener.Repository
	client     *redis.Client
	prefix     string
	hashPrefix string
	ttl        time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:      store,
		client:     client,
		prefix:     "link:",
		hashPrefix: "link_hashes:",
		ttl:        ttl,
	}
}

func (r *RedisCacheRepository) Insert(ctx context.Context, link *shortener.Link) error {
	if err := r.store.Insert(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

func (r *RedisCacheRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// FindByOwner always reads the underlying store so listings stay exact.
func (r *RedisCacheRepository) FindByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Link, error) {
	return r.store.FindByOwner(ctx, owner)
}

// FindByOwnerAndHash trusts the owner's hash index only when the cached link
// still belongs to that owner and URL. Stale entries are dropped.
func (r *RedisCacheRepository) FindByOwnerAndHash(
	ctx context.Context, owner shortener.OwnerID, hash shortener.URLHash,
) (*shortener.Link, error) {
	index := r.hashPrefix + string(owner)

	code, err := r.client.HGet(ctx, index, string(hash)).Result()
	if err == nil {
		link, err := r.getFromCache(ctx, shortener.Code(code))
		if err == nil && link.OwnerID == owner && link.URLHash == hash {
			return link, nil
		}

		if err == nil || errors.Is(err, shortener.ErrNotFound) {
			r.client.HDel(ctx, index, string(hash))
		}
	}

	link, err := r.store.FindByOwnerAndHash(ctx, owner, hash)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// raiseVisitCount stores ARGV[1] as visit_count when it is higher than the
// cached value. It returns 0 when the link is not cached.
var raiseVisitCount = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local current = tonumber(redis.call('HGET', KEYS[1], 'visit_count') or '0')
if tonumber(ARGV[1]) > current then
	redis.call('HSET', KEYS[1], 'visit_count', ARGV[1])
end
return 1
`)

func (r *RedisCacheRepository) IncrementVisit(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	link, err := r.store.IncrementVisit(ctx, code)
	if err != nil {
		return nil, err
	}

	cached, err := raiseVisitCount.Run(ctx, r.client, []string{r.prefix + string(code)}, link.VisitCount).Int()
	if err == nil && cached == 0 {
		r.cacheLink(ctx, link)
	}

	return link, nil
}

// DeleteByOwner also clears the owner's hash index entry. An uncached link is
// read from the store first so its hash is known.
func (r *RedisCacheRepository) DeleteByOwner(ctx context.Context, code shortener.Code, owner shortener.OwnerID) error {
	link, err := r.getFromCache(ctx, code)
	if err != nil {
		link, _ = r.store.FindByCode(ctx, code)
	}

	if err := r.store.DeleteByOwner(ctx, code, owner); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.prefix+string(code))

	if link != nil && link.OwnerID == owner && link.URLHash != "" {
		pipe.HDel(ctx, r.hashPrefix+string(owner), string(link.URLHash))
	}

	_, _ = pipe.Exec(ctx)

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	link := &shortener.Link{
		Code:        shortener.Code(result["code"]),
		OriginalURL: result["original_url"],
		OwnerID:     shortener.OwnerID(result["owner_id"]),
		URLHash:     shortener.URLHash(result["url_hash"]),
	}

	if visits, err := strconv.ParseInt(result["visit_count"], 10, 64); err == nil {
		link.VisitCount = visits
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		link.CreatedAt = time.Unix(0, nanos).UTC()
	}

	return link, nil
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.Link) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"code":         string(link.Code),
		"original_url": link.OriginalURL,
		"owner_id":     string(link.OwnerID),
		"url_hash":     string(link.URLHash),
		"visit_count":  link.VisitCount,
		"created_at":   link.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if link.URLHash != "" {
		index := r.hashPrefix + string(link.OwnerID)
		pipe.HSet(ctx, index, string(link.URLHash), string(link.Code))

		if r.ttl > 0 {
			pipe.Expire(ctx, index, r.ttl)
		}
	}

	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
