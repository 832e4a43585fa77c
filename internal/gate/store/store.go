// Package store persists the KYC counter.
//
// Increment is atomic in every implementation and returns the value it wrote.
package store

import "context"

type Counter interface {
	Increment(ctx context.Context) (uint64, error)
	Value(ctx context.Context) (uint64, error)
}
