package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"sbt/internal/platform/config"
	"sbt/pkg/domain"
)

type AppSuite struct {
	suite.Suite
	app    *App
	server *httptest.Server
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func testConfig() config.Server {
	return config.Server{
		Environment:    "test",
		RequestTimeout: 5 * time.Second,
		Store:          config.StoreMemory,
		JWTSigningKey:  "app-test-key",
		TokenTTL:       time.Minute,
		Registry: config.Registry{
			Issuer:   "issuer",
			BaseURI:  "http://localhost/",
			KYCLevel: 1,
			Name:     "KYC Credential",
			Symbol:   "KYC",
		},
	}
}

func (s *AppSuite) SetupTest() {
	a, err := New(context.Background(), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	s.Require().NoError(err)
	s.app = a
	s.server = httptest.NewServer(a.Handler)
}

func (s *AppSuite) TearDownTest() {
	s.server.Close()
	s.NoError(s.app.Close())
}

func (s *AppSuite) token(account domain.Account) string {
	tok, err := s.app.Tokens.GenerateAccessToken(context.Background(), account)
	s.Require().NoError(err)
	return tok
}

func (s *AppSuite) call(method, path, bearer string, body any) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (s *AppSuite) TestMutationsRequireBearer() {
	resp, body := s.call(http.MethodPost, "/sbt/credentials", "", map[string]any{"owner": "alice", "token_id": 0})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("unauthorized", body["error"])

	resp, _ = s.call(http.MethodPost, "/kyc/increment", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *AppSuite) TestIssueIncrementRevoke() {
	issuer := s.token("issuer")
	alice := s.token("alice")

	resp, body := s.call(http.MethodPost, "/sbt/credentials", issuer, map[string]any{"owner": "alice", "token_id": 0})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("http://localhost/0", body["uri"])

	resp, body = s.call(http.MethodPost, "/kyc/increment", alice, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(1), body["count"])

	resp, _ = s.call(http.MethodPost, "/sbt/credentials/0/revoke", alice, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.call(http.MethodPost, "/sbt/credentials/0/revoke", issuer, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, body = s.call(http.MethodGet, "/sbt/accounts/alice/balance", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(0), body["balance"])
}

func (s *AppSuite) TestRegistryMetadata() {
	resp, body := s.call(http.MethodGet, "/sbt", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("KYC Credential", body["name"])
	s.Equal("KYC", body["symbol"])
	s.Equal("issuer", body["issuer"])
	s.Equal(float64(1), body["kyc_level"])
	s.Equal(float64(0), body["total_supply"])
}

func (s *AppSuite) TestOperationalEndpoints() {
	resp, _ := s.call(http.MethodGet, "/health/ready", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.call(http.MethodGet, "/sbt/interfaces/0xb45a3c0e", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, s.server.URL+"/metrics", nil)
	s.Require().NoError(err)
	mresp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer mresp.Body.Close()
	raw, err := io.ReadAll(mresp.Body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, mresp.StatusCode)
	s.Contains(string(raw), "sbt_http_request_duration_seconds")
	s.Contains(string(raw), "sbt_credentials_issued_total")
}

func TestNewRejectsBadIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Registry.Issuer = ""
	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	if err == nil {
		t.Fatal("expected error for empty issuer")
	}
}
