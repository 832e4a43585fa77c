package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sbt/internal/audit"
	"sbt/internal/credential/models"
	"sbt/internal/credential/service/mocks"
	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/platform/sentinel"
	"sbt/pkg/testutil"
)

var errDB = errors.New("connection reset by peer")

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockStore   *mocks.MockStore
	mockAuditor *mocks.MockAuditPublisher
	registry    *Registry
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockAuditor = mocks.NewMockAuditPublisher(s.ctrl)
	registry, err := New(s.mockStore, models.Metadata{Issuer: issuer, BaseURI: "ipfs://kyc/"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithAuditor(s.mockAuditor),
	)
	s.Require().NoError(err)
	s.registry = registry
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// TestStoreErrorsMapToInternal verifies infrastructure failures never leak as domain outcomes.
func (s *ServiceSuite) TestStoreErrorsMapToInternal() {
	ctx := context.Background()

	s.T().Run("issue", func(t *testing.T) {
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errDB)
		_, err := s.registry.Issue(ctx, issuer, owner, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.ErrorIs(t, err, errDB)
	})

	s.T().Run("balance", func(t *testing.T) {
		s.mockStore.EXPECT().FindByOwner(gomock.Any(), owner).Return(nil, errDB)
		_, err := s.registry.BalanceOf(ctx, owner)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("owner of", func(t *testing.T) {
		s.mockStore.EXPECT().FindByID(gomock.Any(), domain.CredentialID(1)).Return(nil, errDB)
		_, err := s.registry.OwnerOf(ctx, 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("total supply", func(t *testing.T) {
		s.mockStore.EXPECT().Count(gomock.Any()).Return(0, errDB)
		_, err := s.registry.TotalSupply(ctx)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("revoke", func(t *testing.T) {
		s.mockStore.EXPECT().Delete(gomock.Any(), domain.CredentialID(1)).Return(nil, errDB)
		err := s.registry.Revoke(ctx, issuer, 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestIssueMapsSentinels() {
	ctx := context.Background()
	cases := map[error]dErrors.Code{
		sentinel.ErrOwnerTaken: dErrors.CodeDuplicateOwner,
		sentinel.ErrIDTaken:    dErrors.CodeDuplicateID,
	}
	for storeErr, code := range cases {
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(storeErr)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(audit.OutcomeDenied, e.Outcome)
			s.Equal(string(code), e.Reason)
			return nil
		})
		_, err := s.registry.Issue(ctx, issuer, owner, 1)
		s.True(dErrors.HasCode(err, code), "store error %v", storeErr)
	}
}

func (s *ServiceSuite) TestIssueByStrangerNeverTouchesStore() {
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.registry.Issue(context.Background(), stranger, owner, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestIssuePassesDefaultPolicy() {
	s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Credential) error {
		s.Equal(owner, c.Owner)
		s.Equal(issuer, c.Issuer)
		s.Equal(models.BurnAuthBoth, c.BurnAuth)
		s.False(c.IssuedAt.IsZero())
		return nil
	})
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.registry.Issue(context.Background(), issuer, owner, 1)
	s.NoError(err)
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailOperation() {
	s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))

	_, err := s.registry.Issue(context.Background(), issuer, owner, 1)
	s.NoError(err)
}

// TestBurnLosesRaceToConcurrentDelete covers a credential removed between the
// authorization read and the delete.
func (s *ServiceSuite) TestBurnLosesRaceToConcurrentDelete() {
	credential := testutil.NewTestCredential(1, owner)
	s.mockStore.EXPECT().FindByID(gomock.Any(), domain.CredentialID(1)).Return(credential, nil)
	s.mockStore.EXPECT().Delete(gomock.Any(), domain.CredentialID(1)).Return(nil, sentinel.ErrNotFound)

	err := s.registry.Burn(context.Background(), owner, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestTransferNeverMutates() {
	credential := testutil.NewTestCredential(1, owner)
	s.mockStore.EXPECT().FindByID(gomock.Any(), domain.CredentialID(1)).Return(credential, nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	// No Insert or Delete expectations: any mutation fails the test.

	err := s.registry.Transfer(context.Background(), owner, owner, other, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeLocked))
}

func (s *ServiceSuite) TestTokenURIUsesBaseURI() {
	s.mockStore.EXPECT().FindByID(gomock.Any(), domain.CredentialID(12)).Return(testutil.NewTestCredential(12, owner), nil)
	uri, err := s.registry.TokenURI(context.Background(), 12)
	s.Require().NoError(err)
	s.Equal("ipfs://kyc/12", uri)
}
