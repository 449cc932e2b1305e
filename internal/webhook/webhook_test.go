package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/border_conflict_monitor/internal/config"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/pkg/logger"
)

var testEvent = models.SnapshotEvent{
	LastUpdated:     time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC),
	Source:          models.SourceLive,
	DangerRegions:   []string{"Punjab"},
	ModerateRegions: []string{"Gujarat", "Rajasthan"},
	IncidentCount:   2,
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func testConfig(url string) *config.Config {
	return &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "s3cret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
}

func TestRedisWebhookPublisher_Publish(t *testing.T) {
	client, mr := newTestRedis(t)
	publisher := NewRedisWebhookPublisher(client)

	require.NoError(t, publisher.Publish(context.Background(), testEvent))

	items, err := mr.List(webhookQueueKey)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got models.SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, testEvent, got)
}

func TestProcessWebhookEvent_SignedDelivery(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mac := hmac.New(sha256.New, []byte("s3cret"))
		mac.Write(body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, eventType, r.Header.Get("X-Webhook-Event"))
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-Webhook-Signature"))
		received.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, _ := newTestRedis(t)
	worker := NewWebhookWorker(client, logger.NewDiscard(), testConfig(srv.URL))
	payload, _ := json.Marshal(testEvent)

	ok := worker.processWebhookEvent(context.Background(), testEvent, string(payload))

	assert.True(t, ok)
	assert.Equal(t, int32(1), received.Load())
}

func TestProcessWebhookEvent_RetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, _ := newTestRedis(t)
	worker := NewWebhookWorker(client, logger.NewDiscard(), testConfig(srv.URL))

	ok := worker.processWebhookEvent(context.Background(), testEvent, "{}")

	assert.True(t, ok)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestProcessWebhookEvent_GivesUp(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := newTestRedis(t)
	worker := NewWebhookWorker(client, logger.NewDiscard(), testConfig(srv.URL))

	ok := worker.processWebhookEvent(context.Background(), testEvent, "{}")

	assert.False(t, ok)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestProcessWebhookEvent_NoURL(t *testing.T) {
	client, _ := newTestRedis(t)
	worker := NewWebhookWorker(client, logger.NewDiscard(), testConfig(""))

	assert.False(t, worker.processWebhookEvent(context.Background(), testEvent, "{}"))
}

func TestWebhookWorker_DeliversQueuedEvents(t *testing.T) {
	delivered := make(chan models.SnapshotEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.SnapshotEvent
		_ = json.NewDecoder(r.Body).Decode(&event)
		delivered <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, _ := newTestRedis(t)
	worker := NewWebhookWorker(client, logger.NewDiscard(), testConfig(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	done := worker.Start(ctx)

	require.NoError(t, NewRedisWebhookPublisher(client).Publish(ctx, testEvent))

	select {
	case event := <-delivered:
		assert.Equal(t, testEvent, event)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
