package news

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/models"
)

// RSSClient ищет статьи через RSS-поиск (формат Google News), ключ не требуется
type RSSClient struct {
	baseURL string
	parser  *gofeed.Parser
}

func NewRSSClient(baseURL string, timeout time.Duration) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &RSSClient{
		baseURL: baseURL,
		parser:  parser,
	}
}

func (c *RSSClient) Name() string {
	return apperrors.ServiceRSS
}

func (c *RSSClient) Search(ctx context.Context, query string, opts SearchOptions) ([]models.Article, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("rss: invalid base url: %w", err)
	}

	q := query
	if !opts.Since.IsZero() {
		days := int(math.Ceil(time.Since(opts.Since).Hours() / 24))
		if days < 1 {
			days = 1
		}
		q = fmt.Sprintf("%s when:%dd", query, days)
	}
	params := url.Values{}
	params.Set("q", q)
	if opts.Language != "" {
		params.Set("hl", opts.Language)
	}
	u.RawQuery = params.Encode()

	feed, err := c.parser.ParseURLWithContext(u.String(), ctx)
	if err != nil {
		return nil, &apperrors.TransportError{Service: c.Name(), Op: "search", Err: err}
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}
		if !opts.Since.IsZero() && !publishedAt.IsZero() && publishedAt.Before(opts.Since) {
			continue
		}
		articles = append(articles, models.Article{
			Title:       item.Title,
			Source:      itemSource(item, feed),
			URL:         item.Link,
			PublishedAt: publishedAt,
			Description: item.Description,
			Content:     item.Content,
		})
		if opts.PageSize > 0 && len(articles) >= opts.PageSize {
			break
		}
	}
	return articles, nil
}

func itemSource(item *gofeed.Item, feed *gofeed.Feed) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if feed.Title != "" {
		return feed.Title
	}
	return "Unknown source"
}
