package domain

import (
	"context"
	"errors"
)

// Service exposes the revenue metrics snapshot.
type Service interface {
	GetSnapshot(ctx context.Context, req Request) (*Snapshot, error)
}

// ErrProviderUnavailable aborts the provider path whenever any provider
// sub-query fails. No partial provider snapshot is ever returned.
var ErrProviderUnavailable = errors.New("provider_unavailable")
