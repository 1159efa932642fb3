package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const defaultEtcdPrefix = "/correlator/days/"

// EtcdConfig configures the etcd catalog
type EtcdConfig struct {
	Endpoints   []string
	DialTimeout time.Duration // default: 5s
	Username    string
	Password    string
	Prefix      string        // default: /correlator/days/
	CacheTTL    time.Duration // default: 30s
}

// EtcdCatalog stores manifests as JSON values under Prefix. Keys use a
// zero-padded day so a prefix range read returns days in order.
type EtcdCatalog struct {
	client *clientv3.Client
	cache  *kvCache
	prefix string
}

// NewEtcdCatalog connects to etcd
func NewEtcdCatalog(cfg EtcdConfig) (*EtcdCatalog, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultEtcdPrefix
	}
	if !strings.HasSuffix(cfg.Prefix, "/") {
		cfg.Prefix += "/"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &EtcdCatalog{
		client: client,
		cache:  newKVCache(cfg.CacheTTL),
		prefix: cfg.Prefix,
	}, nil
}

func (c *EtcdCatalog) key(day int) string {
	return fmt.Sprintf("%s%06d", c.prefix, day)
}

func (c *EtcdCatalog) Put(ctx context.Context, m *Manifest) error {
	if err := validate(m); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	key := c.key(m.Day)
	if _, err := c.client.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to store manifest in etcd: %w", err)
	}

	c.cache.set(key, data)
	return nil
}

func (c *EtcdCatalog) Get(ctx context.Context, day int) (*Manifest, error) {
	key := c.key(day)

	data, ok := c.cache.get(key)
	if !ok {
		resp, err := c.client.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get manifest from etcd: %w", err)
		}
		if len(resp.Kvs) == 0 {
			return nil, notFound(day)
		}
		data = resp.Kvs[0].Value
		c.cache.set(key, data)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

// List always reads through to etcd
func (c *EtcdCatalog) List(ctx context.Context) ([]*Manifest, error) {
	resp, err := c.client.Get(ctx, c.prefix, clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests from etcd: %w", err)
	}

	out := make([]*Manifest, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var m Manifest
		if err := json.Unmarshal(kv.Value, &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	return out, nil
}

func (c *EtcdCatalog) Delete(ctx context.Context, day int) error {
	key := c.key(day)

	resp, err := c.client.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete manifest from etcd: %w", err)
	}

	c.cache.delete(key)
	if resp.Deleted == 0 {
		return notFound(day)
	}
	return nil
}

// Purge removes every manifest under the prefix
func (c *EtcdCatalog) Purge(ctx context.Context) error {
	if _, err := c.client.Delete(ctx, c.prefix, clientv3.WithPrefix()); err != nil {
		return fmt.Errorf("failed to purge catalog: %w", err)
	}
	c.cache.deletePrefix(c.prefix)
	return nil
}

func (c *EtcdCatalog) Close() error {
	c.cache.stop()
	return c.client.Close()
}
