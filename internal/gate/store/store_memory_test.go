package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"sbt/internal/gate/store"
)

type InMemoryCounterSuite struct {
	CounterContractSuite
}

func TestInMemoryCounterSuite(t *testing.T) {
	s := new(InMemoryCounterSuite)
	s.newCounter = func() store.Counter { return store.NewInMemory() }
	suite.Run(t, s)
}

func TestInMemoryCounterCanceledContext(t *testing.T) {
	c := store.NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Increment(ctx)
	require.ErrorIs(t, err, context.Canceled)

	v, err := c.Value(context.Background())
	require.NoError(t, err)
	require.Zero(t, v)
}
