package database

import (
	"context"
	"strings"

	consulApi "github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
)

// ConsulKV is the subset of the consul KV client used by Consul
type ConsulKV interface {
	Put(p *consulApi.KVPair, q *consulApi.WriteOptions) (*consulApi.WriteMeta, error)
	Get(key string, q *consulApi.QueryOptions) (*consulApi.KVPair, *consulApi.QueryMeta, error)
	List(prefix string, q *consulApi.QueryOptions) (consulApi.KVPairs, *consulApi.QueryMeta, error)
	Delete(key string, w *consulApi.WriteOptions) (*consulApi.WriteMeta, error)
}

// Consul implements Store on the consul KV store. Keys are stored under root.
type Consul struct {
	kv   ConsulKV
	root string
}

// NewConsul connects to the consul agent at address, or the consul default
// address when empty
func NewConsul(address, root string) (*Consul, error) {
	cfg := consulApi.DefaultConfig()
	if address != "" {
		cfg.Address = address
	}

	client, err := consulApi.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a consul client")
	}

	return NewConsulWithKV(client.KV(), root), nil
}

// NewConsulWithKV returns a Consul store backed by kv
func NewConsulWithKV(kv ConsulKV, root string) *Consul {
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return &Consul{kv: kv, root: root}
}

func (c *Consul) path(key string) string {
	return c.root + key
}

// Put writes value under key
func (c *Consul) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.kv.Put(&consulApi.KVPair{Key: c.path(key), Value: value}, c.writeOptions(ctx))
	if err != nil {
		return errors.Wrapf(err, "could not store key %s", key)
	}
	return nil
}

// Get returns the value stored under key
func (c *Consul) Get(ctx context.Context, key string) ([]byte, error) {
	pair, _, err := c.kv.Get(c.path(key), c.queryOptions(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "could not query consul for key %s", key)
	}
	if pair == nil {
		return nil, ErrNotFound
	}
	return pair.Value, nil
}

// List returns every entry whose key starts with prefix
func (c *Consul) List(ctx context.Context, prefix string) ([]Entry, error) {
	pairs, _, err := c.kv.List(c.path(prefix), c.queryOptions(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "could not list consul prefix %s", prefix)
	}

	entries := make([]Entry, 0, len(pairs))
	for _, pair := range pairs {
		entries = append(entries, Entry{
			Key:   strings.TrimPrefix(pair.Key, c.root),
			Value: pair.Value,
		})
	}
	return entries, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Consul) Delete(ctx context.Context, key string) error {
	_, err := c.kv.Delete(c.path(key), c.writeOptions(ctx))
	if err != nil {
		return errors.Wrapf(err, "could not delete key %s", key)
	}
	return nil
}

// Close is a no-op; the consul client holds no long lived connection
func (c *Consul) Close() error {
	return nil
}

func (c *Consul) queryOptions(ctx context.Context) *consulApi.QueryOptions {
	return (&consulApi.QueryOptions{}).WithContext(ctx)
}

func (c *Consul) writeOptions(ctx context.Context) *consulApi.WriteOptions {
	return (&consulApi.WriteOptions{}).WithContext(ctx)
}
