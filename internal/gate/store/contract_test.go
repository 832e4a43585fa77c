package store_test

import (
	"context"

	"github.com/stretchr/testify/suite"

	"sbt/internal/gate/store"
	"sbt/pkg/testutil"
)

type CounterContractSuite struct {
	suite.Suite
	newCounter func() store.Counter
	counter    store.Counter
}

func (s *CounterContractSuite) SetupTest() {
	s.counter = s.newCounter()
}

func (s *CounterContractSuite) TestStartsAtZero() {
	v, err := s.counter.Value(context.Background())
	s.Require().NoError(err)
	s.Zero(v)
}

func (s *CounterContractSuite) TestIncrementReturnsNewValue() {
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		got, err := s.counter.Increment(ctx)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
	v, err := s.counter.Value(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(3), v)
}

func (s *CounterContractSuite) TestConcurrentIncrementsAreNotLost() {
	ctx := context.Background()
	result := testutil.RunConcurrent(50, func(int) error {
		_, err := s.counter.Increment(ctx)
		return err
	})
	s.Equal(int32(50), result.Successes)

	v, err := s.counter.Value(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(50), v)
}
