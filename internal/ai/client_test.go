package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/border_conflict_monitor/internal/ai"
	"github.com/shenikar/border_conflict_monitor/internal/ai/mocks"
	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/metrics"
	"github.com/shenikar/border_conflict_monitor/pkg/logger"
)

func newTestClient(t *testing.T, timeout time.Duration, retries int) (*ai.Client, *mocks.MockGenerator) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	return ai.NewClient(gen, timeout, retries, logger.NewDiscard(), nil), gen
}

func TestComplete_Success(t *testing.T) {
	client, gen := newTestClient(t, time.Second, 0)

	gen.EXPECT().
		Generate(gomock.Any(), "prompt").
		Return(`{"states":[]}`, nil).
		Times(1)

	text, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"states":[]}`, text)
}

func TestComplete_WrapsTransportError(t *testing.T) {
	client, gen := newTestClient(t, time.Second, 0)

	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("connection reset")).
		Times(1)

	_, err := client.Complete(context.Background(), "prompt")

	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, apperrors.ServiceGemini, transportErr.Service)
}

func TestComplete_RetriesTransportErrors(t *testing.T) {
	client, gen := newTestClient(t, time.Second, 2)

	gomock.InOrder(
		gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("503")),
		gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("503")),
		gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("ok", nil),
	)

	text, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestComplete_ConfigurationErrorIsNotRetried(t *testing.T) {
	client, gen := newTestClient(t, time.Second, 3)

	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", &apperrors.ConfigurationError{Service: apperrors.ServiceGemini}).
		Times(1)

	_, err := client.Complete(context.Background(), "prompt")

	assert.True(t, apperrors.IsConfiguration(err))
	assert.EqualError(t, err, "gemini key missing")
}

func TestComplete_Timeout(t *testing.T) {
	client, gen := newTestClient(t, 20*time.Millisecond, 0)

	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}).
		Times(1)

	_, err := client.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthCheck(t *testing.T) {
	t.Run("non-empty response", func(t *testing.T) {
		client, gen := newTestClient(t, time.Second, 0)
		gen.EXPECT().Generate(gomock.Any(), "Hello, respond with just one word.").Return("Hello", nil)

		assert.True(t, client.HealthCheck(context.Background()))
	})

	t.Run("empty response", func(t *testing.T) {
		client, gen := newTestClient(t, time.Second, 0)
		gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("  \n", nil)

		assert.False(t, client.HealthCheck(context.Background()))
	})

	t.Run("transport error", func(t *testing.T) {
		client, gen := newTestClient(t, time.Second, 0)
		gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("unreachable"))

		assert.False(t, client.HealthCheck(context.Background()))
	})
}

func TestComplete_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	reg := prometheus.NewRegistry()
	client := ai.NewClient(gen, time.Second, 0, logger.NewDiscard(), metrics.New(reg))

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("ok", nil)

	_, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "conflict_monitor_model_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGeminiGenerator_MissingKey(t *testing.T) {
	gen := ai.NewGeminiGenerator("", "gemini-1.5-flash")

	_, err := gen.Generate(context.Background(), "prompt")

	assert.True(t, apperrors.IsConfiguration(err))
}
