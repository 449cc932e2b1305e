// Package news собирает статьи из поисковых сервисов: параллельные запросы,
// слияние, дедупликация по каноническому URL и фильтрация по релевантности.
package news

import (
	"context"
	"time"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

// SearchOptions - параметры одного поискового запроса
type SearchOptions struct {
	Language string
	PageSize int
	Since    time.Time
}

// Searcher - поисковый сервис статей
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, opts SearchOptions) ([]models.Article, error)
}
