package bullhorn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired    = errors.New("NATS URL is required")
	ErrNATSBucketRequired = errors.New("NATS KV bucket is required")
	ErrNATSCacheClosed    = errors.New("NATS KV cache is closed")
)

// NATSKVConfig configures a NATS JetStream key/value cache.
type NATSKVConfig struct {
	// URL of the NATS server(s), comma separated.
	URL string
	// Bucket is the KV bucket name.
	Bucket string
	// Name identifies the connection on the server.
	Name string
	// CreateBucket creates the bucket when it does not exist.
	CreateBucket bool
	// TTL is the bucket-level expiry used when the bucket is created.
	TTL time.Duration
}

// NATSKVCache stores entries in a NATS KV bucket so several processes can
// share candidate lookups.
type NATSKVCache struct {
	connMut  sync.RWMutex
	natsConn *nats.Conn
	kv       nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds the configured bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	if config.Bucket == "" {
		return nil, ErrNATSBucketRequired
	}

	var opts []nats.Option
	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	natsConn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	kv, err := bindBucket(natsConn, config)
	if err != nil {
		natsConn.Close()

		return nil, err
	}

	return &NATSKVCache{natsConn: natsConn, kv: kv}, nil
}

func bindBucket(natsConn *nats.Conn, config *NATSKVConfig) (nats.KeyValue, error) {
	js, err := natsConn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) && config.CreateBucket {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("binding KV bucket %s: %w", config.Bucket, err)
	}

	return kv, nil
}

// encodeKey maps arbitrary keys (emails contain '@' and '+') onto the NATS
// KV key alphabet.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (c *NATSKVCache) bucket() (nats.KeyValue, error) {
	if c.kv == nil {
		return nil, ErrNATSCacheClosed
	}

	return c.kv, nil
}

// Get retrieves an unexpired entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.connMut.RLock()
	defer c.connMut.RUnlock()

	kv, err := c.bucket()
	if err != nil {
		return nil, err
	}

	kvEntry, err := kv.Get(encodeKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from NATS KV: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.connMut.RLock()
	defer c.connMut.RUnlock()

	kv, err := c.bucket()
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	_, err = kv.Put(encodeKey(key), data)
	if err != nil {
		return fmt.Errorf("writing %s to NATS KV: %w", key, err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	c.connMut.RLock()
	defer c.connMut.RUnlock()

	kv, err := c.bucket()
	if err != nil {
		return err
	}

	err = kv.Delete(encodeKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
	}

	return nil
}

// Clear removes every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	c.connMut.RLock()
	defer c.connMut.RUnlock()

	kv, err := c.bucket()
	if err != nil {
		return err
	}

	keys, err := kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS KV keys: %w", err)
	}

	for _, key := range keys {
		err = kv.Delete(key)
		if err != nil {
			return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
		}
	}

	return nil
}

// Has checks if an unexpired entry exists.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the NATS connection.
func (c *NATSKVCache) Close() error {
	c.connMut.Lock()
	defer c.connMut.Unlock()

	if c.natsConn != nil {
		c.natsConn.Close()
		c.natsConn = nil
	}

	c.kv = nil

	return nil
}
