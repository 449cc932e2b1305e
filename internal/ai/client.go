package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/metrics"
)

const healthCheckPrompt = "Hello, respond with just one word."

// Client - клиент модели с таймаутом на вызов и настраиваемыми повторами
type Client struct {
	gen        Generator
	timeout    time.Duration
	maxRetries int
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

func NewClient(gen Generator, timeout time.Duration, maxRetries int, logger *logrus.Logger, m *metrics.Metrics) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		gen:        gen,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger,
		metrics:    m,
	}
}

// Complete отправляет prompt модели и возвращает сырой текст ответа.
// Истечение таймаута возвращается как TransportError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	log := c.logger.WithFields(logrus.Fields{
		"service":    "model",
		"method":     "Complete",
		"prompt_len": len(prompt),
	})

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.call(ctx, prompt)
		c.metrics.ObserveModel(err)
		if err == nil {
			log.WithField("response_len", len(text)).Debug("Model completion received")
			return text, nil
		}
		lastErr = err

		if apperrors.IsConfiguration(err) || errors.Is(err, apperrors.ErrModelUnavailable) || ctx.Err() != nil {
			break
		}
		log.WithError(err).WithField("attempt", attempt+1).Warn("Model completion failed")
	}

	var transportErr *apperrors.TransportError
	if apperrors.IsConfiguration(lastErr) || errors.Is(lastErr, apperrors.ErrModelUnavailable) || errors.As(lastErr, &transportErr) {
		return "", lastErr
	}
	return "", &apperrors.TransportError{Service: apperrors.ServiceGemini, Op: "complete", Err: lastErr}
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.gen.Generate(ctx, prompt)
}

// HealthCheck отправляет тривиальный запрос; любая ошибка или пустой ответ дают false
func (c *Client) HealthCheck(ctx context.Context) bool {
	text, err := c.Complete(ctx, healthCheckPrompt)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"service": "model",
			"method":  "HealthCheck",
		}).WithError(err).Warn("Model health check failed")
		return false
	}
	return strings.TrimSpace(text) != ""
}

// Probe выполняет тот же тривиальный запрос и возвращает текст ответа для диагностики
func (c *Client) Probe(ctx context.Context) (string, error) {
	return c.Complete(ctx, healthCheckPrompt)
}
