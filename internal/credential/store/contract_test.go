package store_test

import (
	"context"
	"math"

	"github.com/stretchr/testify/suite"

	"sbt/internal/credential/models"
	"sbt/internal/credential/store"
	"sbt/pkg/domain"
	"sbt/pkg/platform/sentinel"
	"sbt/pkg/testutil"
)

// ContractSuite holds the behaviour every Store backend must share.
// Backend suites embed it and set newStore.
type ContractSuite struct {
	suite.Suite
	newStore func() store.Store
	store    store.Store
}

func (s *ContractSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *ContractSuite) TestInsertAndFind() {
	ctx := context.Background()
	c := testutil.NewTestCredential(7, testutil.TestAccounts.Alice)
	s.Require().NoError(s.store.Insert(ctx, c))

	byID, err := s.store.FindByID(ctx, 7)
	s.Require().NoError(err)
	s.Equal(c.Owner, byID.Owner)
	s.Equal(c.Issuer, byID.Issuer)
	s.Equal(models.BurnAuthBoth, byID.BurnAuth)
	s.True(c.IssuedAt.Equal(byID.IssuedAt))

	byOwner, err := s.store.FindByOwner(ctx, testutil.TestAccounts.Alice)
	s.Require().NoError(err)
	s.Equal(domain.CredentialID(7), byOwner.ID)

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ContractSuite) TestMaxUint64ID() {
	ctx := context.Background()
	c := testutil.NewTestCredential(math.MaxUint64, testutil.TestAccounts.Alice)
	s.Require().NoError(s.store.Insert(ctx, c))

	got, err := s.store.FindByID(ctx, math.MaxUint64)
	s.Require().NoError(err)
	s.Equal(domain.CredentialID(math.MaxUint64), got.ID)
}

func (s *ContractSuite) TestDuplicateOwner() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(1, testutil.TestAccounts.Alice)))

	err := s.store.Insert(ctx, testutil.NewTestCredential(2, testutil.TestAccounts.Alice))
	s.ErrorIs(err, sentinel.ErrOwnerTaken)

	_, err = s.store.FindByID(ctx, 2)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContractSuite) TestDuplicateID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(1, testutil.TestAccounts.Alice)))

	err := s.store.Insert(ctx, testutil.NewTestCredential(1, testutil.TestAccounts.Bob))
	s.ErrorIs(err, sentinel.ErrIDTaken)

	_, err = s.store.FindByOwner(ctx, testutil.TestAccounts.Bob)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContractSuite) TestOwnerCheckedBeforeID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(1, testutil.TestAccounts.Alice)))

	err := s.store.Insert(ctx, testutil.NewTestCredential(1, testutil.TestAccounts.Alice))
	s.ErrorIs(err, sentinel.ErrOwnerTaken)
}

func (s *ContractSuite) TestDeleteRemovesBothIndexes() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(3, testutil.TestAccounts.Bob)))

	deleted, err := s.store.Delete(ctx, 3)
	s.Require().NoError(err)
	s.Equal(testutil.TestAccounts.Bob, deleted.Owner)

	_, err = s.store.FindByID(ctx, 3)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByOwner(ctx, testutil.TestAccounts.Bob)
	s.ErrorIs(err, sentinel.ErrNotFound)

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ContractSuite) TestDeleteMissing() {
	_, err := s.store.Delete(context.Background(), 99)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContractSuite) TestDeletedIDIsRetired() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(4, testutil.TestAccounts.Alice)))
	_, err := s.store.Delete(ctx, 4)
	s.Require().NoError(err)

	err = s.store.Insert(ctx, testutil.NewTestCredential(4, testutil.TestAccounts.Carol))
	s.ErrorIs(err, sentinel.ErrIDTaken)
}

func (s *ContractSuite) TestOwnerCanReceiveNewCredentialAfterDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(5, testutil.TestAccounts.Alice)))
	_, err := s.store.Delete(ctx, 5)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(6, testutil.TestAccounts.Alice)))
	got, err := s.store.FindByOwner(ctx, testutil.TestAccounts.Alice)
	s.Require().NoError(err)
	s.Equal(domain.CredentialID(6), got.ID)
}

func (s *ContractSuite) TestConcurrentIssueSameID() {
	ctx := context.Background()
	result := testutil.RunConcurrent(20, func(i int) error {
		return s.store.Insert(ctx, testutil.NewTestCredential(42, testutil.OwnerN(i)))
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Zero(result.Errors)

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ContractSuite) TestConcurrentIssueSameOwner() {
	ctx := context.Background()
	result := testutil.RunConcurrent(20, func(i int) error {
		return s.store.Insert(ctx, testutil.NewTestCredential(domain.CredentialID(100+i), testutil.TestAccounts.Carol))
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Zero(result.Errors)
}

func (s *ContractSuite) TestConcurrentDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(9, testutil.TestAccounts.Alice)))

	result := testutil.RunConcurrent(10, func(int) error {
		_, err := s.store.Delete(ctx, 9)
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.NotFounds)
}

// Writes under a canceled context fail without touching either index or the
// issued-id ledger.
func (s *ContractSuite) TestCanceledContextWritesNothing() {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	result := testutil.RunConcurrentCtx(canceled, 10, func(ctx context.Context, i int) error {
		return s.store.Insert(ctx, testutil.NewTestCredential(domain.CredentialID(i), testutil.OwnerN(i)))
	})
	s.Zero(result.Successes)
	s.Zero(result.Conflicts)
	s.Equal(int32(10), result.Errors)

	ctx := context.Background()
	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Require().NoError(s.store.Insert(ctx, testutil.NewTestCredential(0, testutil.OwnerN(0))))
}
