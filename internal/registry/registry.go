package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"urly/internal/database"
	"urly/internal/models"
)

// KeyPrefix is the storage key prefix of subscription records
const KeyPrefix = "subscription:"

// ErrNotFound is returned by Get when no subscription has the given id
var ErrNotFound = errors.New("subscription not found")

// StorageError reports a failure of the underlying store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Registry stores subscriptions as JSON records keyed by id
type Registry struct {
	store database.Store
}

// New returns a Registry backed by store
func New(store database.Store) *Registry {
	return &Registry{store: store}
}

// Key returns the storage key of the subscription with the given id
func Key(id string) string {
	return KeyPrefix + id
}

// Put inserts or overwrites a subscription
func (r *Registry) Put(ctx context.Context, sub *models.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := r.store.Put(ctx, Key(sub.ID), data); err != nil {
		return &StorageError{Op: "put", Err: err}
	}
	return nil
}

// Get returns the subscription with the given id
func (r *Registry) Get(ctx context.Context, id string) (*models.Subscription, error) {
	data, err := r.store.Get(ctx, Key(id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}

	var sub models.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return &sub, nil
}

// ListAll returns every stored subscription in no particular order.
// Records that cannot be decoded are logged and skipped.
func (r *Registry) ListAll(ctx context.Context) ([]models.Subscription, error) {
	entries, err := r.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	subs := make([]models.Subscription, 0, len(entries))
	for _, e := range entries {
		var sub models.Subscription
		if err := json.Unmarshal(e.Value, &sub); err != nil {
			log.WithField("key", e.Key).Warnf("Skipping undecodable subscription: %v", err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Delete removes the subscription with the given id. Deleting an unknown id
// succeeds.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Key(id)); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}
