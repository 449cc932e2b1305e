package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/models"
)

const newsAPITimeLayout = "2006-01-02T15:04:05"

// NewsAPIClient - клиент эндпоинта /v2/everything сервиса NewsAPI
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// NewNewsAPIClient создает клиент NewsAPI; ratePerSecond <= 0 отключает ограничение частоты
func NewNewsAPIClient(apiKey, baseURL string, timeout time.Duration, ratePerSecond float64) *NewsAPIClient {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *NewsAPIClient) Name() string {
	return apperrors.ServiceNewsAPI
}

// Search выполняет один запрос к NewsAPI, статьи отсортированы по дате публикации
func (c *NewsAPIClient) Search(ctx context.Context, query string, opts SearchOptions) ([]models.Article, error) {
	if c.apiKey == "" {
		return nil, &apperrors.ConfigurationError{Service: apperrors.ServiceNewsAPI}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &apperrors.TransportError{Service: c.Name(), Op: "rate limit", Err: err}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("newsapi: invalid base url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}
	if opts.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if !opts.Since.IsZero() {
		params.Set("from", opts.Since.UTC().Format(newsAPITimeLayout))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperrors.TransportError{Service: c.Name(), Op: "search", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.TransportError{Service: c.Name(), Op: "read response", Err: err}
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &apperrors.TransportError{
			Service: c.Name(),
			Op:      "decode response",
			Err:     fmt.Errorf("status %d: %w", resp.StatusCode, err),
		}
	}

	if payload.Status != "ok" {
		return nil, &apperrors.TransportError{
			Service: c.Name(),
			Op:      "search",
			Err:     fmt.Errorf("status %d, code %q: %s", resp.StatusCode, payload.Code, payload.Message),
		}
	}

	articles := make([]models.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, a.toModel())
	}
	return articles, nil
}

func (a newsAPIArticle) toModel() models.Article {
	publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		publishedAt = time.Time{}
	}
	source := a.Source.Name
	if source == "" {
		source = "Unknown source"
	}
	return models.Article{
		Title:       a.Title,
		Source:      source,
		URL:         a.URL,
		PublishedAt: publishedAt.UTC(),
		Description: a.Description,
		Content:     a.Content,
	}
}
