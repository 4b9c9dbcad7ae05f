package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// CandidatesClient implements bullhorn.CandidatesClient.
type CandidatesClient struct {
	httpClient *http.Client
	cache      bullhorn.Cache
	cacheTTL   time.Duration
	logger     bullhorn.Logger

	// ensures serializes FindOrCreateByEmail per email within this process.
	ensures singleflight.Group
}

// NewCandidatesClient creates a new candidates client. A nil cache disables
// lookup caching.
func NewCandidatesClient(httpClient *http.Client, cache bullhorn.Cache, cacheTTL time.Duration, logger bullhorn.Logger) *CandidatesClient {
	if cache == nil {
		cache = bullhorn.NewNoOpCache()
	}

	return &CandidatesClient{
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// FindByEmail implements bullhorn.CandidatesClient.FindByEmail. It returns
// nil without error when no candidate matches.
func (c *CandidatesClient) FindByEmail(ctx context.Context, email string) (*bullhorn.Candidate, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, bullhorn.ErrEmailRequired
	}

	query := url.Values{
		"query":  {fmt.Sprintf("email:%q", email)},
		"fields": {constants.CandidateLookupFields},
	}

	resp, err := c.httpClient.Get(ctx, constants.PathSearch+constants.EntityCandidate, query)
	if err != nil {
		return nil, classify("search", constants.EntityCandidate, err)
	}

	var list bullhorn.ListResponse[bullhorn.Candidate]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, classify("search", constants.EntityCandidate, fmt.Errorf("parsing candidate search: %w", err))
	}

	if len(list.Data) == 0 {
		return nil, nil
	}

	return &list.Data[0], nil
}

// Create implements bullhorn.CandidatesClient.Create.
func (c *CandidatesClient) Create(ctx context.Context, candidate *bullhorn.Candidate) (*bullhorn.ChangeResult, error) {
	if candidate == nil {
		return nil, bullhorn.ErrCandidateRequired
	}

	resp, err := c.httpClient.Put(ctx, constants.PathEntity+constants.EntityCandidate, candidate)
	if err != nil {
		return nil, classify("create", constants.EntityCandidate, err)
	}

	var result bullhorn.ChangeResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, classify("create", constants.EntityCandidate, fmt.Errorf("parsing change result: %w", err))
	}

	return &result, nil
}

// FindOrCreateByEmail implements bullhorn.CandidatesClient.FindOrCreateByEmail.
// Lookups are cached by lowercase email. Concurrent calls for the same email
// share one search and at most one creation.
func (c *CandidatesClient) FindOrCreateByEmail(ctx context.Context, candidate *bullhorn.Candidate) (int, error) {
	if candidate == nil {
		return 0, bullhorn.ErrCandidateRequired
	}

	email := strings.ToLower(strings.TrimSpace(candidate.Email))
	if email == "" {
		return 0, bullhorn.ErrEmailRequired
	}

	key := constants.CandidateCacheKeyPrefix + email

	if id, ok := c.cachedID(ctx, key); ok {
		return id, nil
	}

	// The shared lookup outlives any one caller; each caller stops waiting
	// when its own ctx ends.
	flight := c.ensures.DoChan(key, func() (interface{}, error) {
		sharedCtx := context.WithoutCancel(ctx)

		if id, ok := c.cachedID(sharedCtx, key); ok {
			return id, nil
		}

		id, err := c.findOrCreate(sharedCtx, candidate)
		if err != nil {
			return 0, err
		}

		c.remember(sharedCtx, key, id)

		return id, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return 0, result.Err
		}

		id, _ := result.Val.(int)

		return id, nil
	}
}

func (c *CandidatesClient) findOrCreate(ctx context.Context, candidate *bullhorn.Candidate) (int, error) {
	existing, err := c.FindByEmail(ctx, candidate.Email)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		return existing.ID, nil
	}

	created, err := c.Create(ctx, candidate)
	if err != nil {
		return 0, err
	}

	return created.ChangedEntityID, nil
}

func (c *CandidatesClient) cachedID(ctx context.Context, key string) (int, bool) {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, bullhorn.ErrCacheMiss) && !errors.Is(err, bullhorn.ErrCacheEntryExpired) && !errors.Is(err, bullhorn.ErrCacheDisabled) {
			c.warn("candidate cache read failed", key, err)
		}

		return 0, false
	}

	id, err := strconv.Atoi(string(entry.Data))
	if err != nil {
		c.warn("candidate cache entry is corrupt", key, err)

		return 0, false
	}

	return id, true
}

func (c *CandidatesClient) remember(ctx context.Context, key string, id int) {
	entry := &bullhorn.CacheEntry{Data: []byte(strconv.Itoa(id))}
	if c.cacheTTL > 0 {
		entry.ExpiresAt = time.Now().Add(c.cacheTTL)
	}

	err := c.cache.Set(ctx, key, entry)
	if err != nil {
		c.warn("candidate cache write failed", key, err)
	}
}

func (c *CandidatesClient) warn(msg, key string, err error) {
	if c.logger == nil {
		return
	}

	c.logger.Warn(msg, map[string]interface{}{
		"key":   key,
		"error": err.Error(),
	})
}
