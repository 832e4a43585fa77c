package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Counter
//go:generate mockgen -source=../ports/credential.go -destination=mocks/ports_mock.go -package=mocks CredentialPort

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sbt/internal/audit"
	"sbt/internal/gate/metrics"
	"sbt/internal/gate/service/mocks"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/testutil"
)

type GateSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	credentials *mocks.MockCredentialPort
	counter     *mocks.MockCounter
	auditStore  *audit.InMemoryStore
	metrics     *metrics.Metrics
	gate        *Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.credentials = mocks.NewMockCredentialPort(s.ctrl)
	s.counter = mocks.NewMockCounter(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.gate = New(s.credentials, s.counter, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithAuditor(audit.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)
}

func (s *GateSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GateSuite) TestIncrementForHolder() {
	alice := testutil.TestAccounts.Alice
	s.credentials.EXPECT().HoldsCredential(gomock.Any(), alice).Return(true, nil)
	s.counter.EXPECT().Increment(gomock.Any()).Return(uint64(1), nil)

	v, err := s.gate.Increment(context.Background(), alice)
	s.Require().NoError(err)
	s.Equal(uint64(1), v)

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Increments.WithLabelValues("success")))
	events := s.auditStore.All()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionKYCIncremented, events[0].Action)
	s.Equal(audit.OutcomeSuccess, events[0].Outcome)
}

func (s *GateSuite) TestIncrementWithoutCredential() {
	bob := testutil.TestAccounts.Bob
	s.credentials.EXPECT().HoldsCredential(gomock.Any(), bob).Return(false, nil)
	// No counter expectation: a denied increment must not write.

	_, err := s.gate.Increment(context.Background(), bob)
	s.True(dErrors.HasCode(err, dErrors.CodeNoCredential))

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Increments.WithLabelValues("denied")))
	events := s.auditStore.All()
	s.Require().Len(events, 1)
	s.Equal(audit.OutcomeDenied, events[0].Outcome)
	s.Equal(string(dErrors.CodeNoCredential), events[0].Reason)
}

func (s *GateSuite) TestCredentialLookupFailure() {
	s.credentials.EXPECT().HoldsCredential(gomock.Any(), gomock.Any()).Return(false, errors.New("registry down"))

	_, err := s.gate.Increment(context.Background(), testutil.TestAccounts.Alice)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *GateSuite) TestCounterFailure() {
	s.credentials.EXPECT().HoldsCredential(gomock.Any(), gomock.Any()).Return(true, nil)
	s.counter.EXPECT().Increment(gomock.Any()).Return(uint64(0), errors.New("redis timeout"))

	_, err := s.gate.Increment(context.Background(), testutil.TestAccounts.Alice)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(s.auditStore.All())
}

func (s *GateSuite) TestCount() {
	s.counter.EXPECT().Value(gomock.Any()).Return(uint64(7), nil)
	v, err := s.gate.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(7), v)

	s.counter.EXPECT().Value(gomock.Any()).Return(uint64(0), errors.New("conn refused"))
	_, err = s.gate.Count(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
