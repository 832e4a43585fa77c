//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sbt/internal/credential/store"
	"sbt/pkg/testutil"
	"sbt/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	ContractSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.newStore = func() store.Store { return store.NewRedis(s.redis.Client) }
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.ContractSuite.SetupTest()
}

// Delete resolves the owner index before running the script, so only declared
// keys are touched and none are left behind.
func (s *RedisStoreSuite) TestDeleteClearsDeclaredKeys() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(5, testutil.TestAccounts.Alice)))

	deleted, err := s.store.Delete(ctx, 5)
	s.Require().NoError(err)
	s.Equal(testutil.TestAccounts.Alice, deleted.Owner)

	n, err := s.redis.Client.Exists(ctx,
		"sbt:{sbt}:token:5",
		"sbt:{sbt}:owner:"+testutil.TestAccounts.Alice.String(),
	).Result()
	s.Require().NoError(err)
	s.Zero(n)

	live, err := s.redis.Client.SIsMember(ctx, "sbt:{sbt}:live", "5").Result()
	s.Require().NoError(err)
	s.False(live)
	issued, err := s.redis.Client.SIsMember(ctx, "sbt:{sbt}:issued", "5").Result()
	s.Require().NoError(err)
	s.True(issued)
}
