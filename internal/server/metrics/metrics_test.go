package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/dmitrijs2005/bankauth/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{&common.InvalidInputError{Field: common.FieldEmail}, OutcomeInvalidInput},
		{common.ErrorUnauthorized, OutcomeUnauthorized},
		{fmt.Errorf("wrap: %w", &common.ConflictError{Field: common.FieldEmail}), OutcomeConflict},
		{fmt.Errorf("%w: db down", common.ErrorStoreUnavailable), OutcomeStoreUnavailable},
		{context.DeadlineExceeded, OutcomeStoreUnavailable},
		{errors.New("other"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestRecordLogin_IncrementsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues(OutcomeUnauthorized))

	RecordLogin(common.ErrorUnauthorized)

	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues(OutcomeUnauthorized)))
}

func TestRecordRegistrationAndMigration(t *testing.T) {
	regBefore := testutil.ToFloat64(Registrations.WithLabelValues(OutcomeSuccess))
	migBefore := testutil.ToFloat64(PasswordMigrations)

	RecordRegistration(nil)
	RecordMigration()

	assert.Equal(t, regBefore+1, testutil.ToFloat64(Registrations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, migBefore+1, testutil.ToFloat64(PasswordMigrations))
}

func TestServer_Handler(t *testing.T) {
	srv := NewServer("127.0.0.1:0", logging.NewNopLogger())
	RecordLogin(nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bankauth_login_attempts_total")

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
