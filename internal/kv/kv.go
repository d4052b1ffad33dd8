// internal/kv/kv.go

// Package kv defines the durable key-value store the ledger engine
// persists through, and its in-process backends. Values are entity
// collections serialized as JSON; keys are namespaced per user and per
// entity type.
package kv

import (
	"context"
	"fmt"
)

// Store is the durable key-value store collaborator. Get returns
// util.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "credikhaata_data"

// CustomersKey is the storage key for a user's customer collection.
func CustomersKey(userID string) string {
	return fmt.Sprintf("%s_%s_customers", keyPrefix, userID)
}

// LoansKey is the storage key for a user's loan collection.
func LoansKey(userID string) string {
	return fmt.Sprintf("%s_%s_loans", keyPrefix, userID)
}
