package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/service"
)

// ключ единственной строки метаданных снимка
const metadataKey = "lastUpdate"

type SnapshotRepository struct {
	db *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) service.SnapshotRepository {
	return &SnapshotRepository{
		db: db,
	}
}

// Save записывает снимок одной транзакцией: статусы регионов перезаписываются целиком,
// инциденты и статьи добавляются по ключу
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.ConflictSnapshot) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		names := make([]string, 0, len(snapshot.RegionStatuses))
		for i, st := range snapshot.RegionStatuses {
			names = append(names, st.Name)
			batch.Queue(`
				INSERT INTO region_statuses (name, position, danger_level, description, last_updated)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (name) DO UPDATE SET
					position = EXCLUDED.position,
					danger_level = EXCLUDED.danger_level,
					description = EXCLUDED.description,
					last_updated = EXCLUDED.last_updated;
			`, st.Name, i, string(st.DangerLevel), st.Description, st.LastUpdated)
		}
		// регионы, исчезнувшие из перечня, не должны попадать в снимок
		batch.Queue(`DELETE FROM region_statuses WHERE NOT (name = ANY($1));`, names)

		for _, incident := range snapshot.Incidents {
			batch.Queue(`
				INSERT INTO incidents (key, city, region, description, occurred_at, source_article_url)
				VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
				ON CONFLICT (key) DO UPDATE SET
					city = EXCLUDED.city,
					region = EXCLUDED.region,
					description = EXCLUDED.description,
					occurred_at = EXCLUDED.occurred_at,
					source_article_url = EXCLUDED.source_article_url;
			`, incident.Key(), incident.City, incident.Region, incident.Description, incident.Timestamp, incident.SourceArticleURL)
		}

		for _, article := range snapshot.Articles {
			batch.Queue(`
				INSERT INTO articles (key, title, source, url, published_at, summary, fetched_at)
				VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NOW())
				ON CONFLICT (key) DO UPDATE SET
					title = EXCLUDED.title,
					source = EXCLUDED.source,
					published_at = EXCLUDED.published_at,
					summary = EXCLUDED.summary,
					fetched_at = EXCLUDED.fetched_at;
			`, article.Key(), article.Title, article.Source, article.URL, nullableTime(article.PublishedAt), article.Summary)
		}

		batch.Queue(`
			INSERT INTO snapshot_metadata (id, last_updated, source)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET
				last_updated = EXCLUDED.last_updated,
				source = EXCLUDED.source;
		`, metadataKey, snapshot.LastUpdated, string(snapshot.Source))

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Latest собирает последний сохраненный снимок. Возвращает nil, nil, если запусков еще не было.
func (r *SnapshotRepository) Latest(ctx context.Context, incidentLimit, articleLimit int) (*models.ConflictSnapshot, error) {
	snapshot := &models.ConflictSnapshot{}
	var source string
	err := r.db.QueryRow(ctx, `
		SELECT last_updated, source
		FROM snapshot_metadata
		WHERE id = $1;
	`, metadataKey).Scan(&snapshot.LastUpdated, &source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot metadata: %w", err)
	}
	snapshot.Source = models.SnapshotSource(source)

	if snapshot.RegionStatuses, err = r.listRegionStatuses(ctx); err != nil {
		return nil, err
	}
	if snapshot.Incidents, err = r.listIncidents(ctx, incidentLimit); err != nil {
		return nil, err
	}
	if snapshot.Articles, err = r.listArticles(ctx, articleLimit); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Ping проверяет доступность базы данных
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return &apperrors.TransportError{Service: apperrors.ServicePostgres, Op: "ping", Err: err}
	}
	return nil
}

func (r *SnapshotRepository) listRegionStatuses(ctx context.Context) ([]models.RegionStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, danger_level, description, last_updated
		FROM region_statuses
		ORDER BY position;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list region statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]models.RegionStatus, 0)
	for rows.Next() {
		var st models.RegionStatus
		var level string
		if err := rows.Scan(&st.Name, &level, &st.Description, &st.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan region status row: %w", err)
		}
		st.DangerLevel, _ = models.ParseDangerLevel(level)
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error region status iteration: %w", err)
	}
	return statuses, nil
}

func (r *SnapshotRepository) listIncidents(ctx context.Context, limit int) ([]models.Incident, error) {
	rows, err := r.db.Query(ctx, `
		SELECT city, region, description, occurred_at, COALESCE(source_article_url, '')
		FROM incidents
		ORDER BY occurred_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]models.Incident, 0)
	for rows.Next() {
		var incident models.Incident
		err := rows.Scan(
			&incident.City,
			&incident.Region,
			&incident.Description,
			&incident.Timestamp,
			&incident.SourceArticleURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error incident iteration: %w", err)
	}
	return incidents, nil
}

func (r *SnapshotRepository) listArticles(ctx context.Context, limit int) ([]models.Article, error) {
	rows, err := r.db.Query(ctx, `
		SELECT title, source, url, published_at, COALESCE(summary, '')
		FROM articles
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.Article, 0)
	for rows.Next() {
		var article models.Article
		var publishedAt *time.Time
		if err := rows.Scan(&article.Title, &article.Source, &article.URL, &publishedAt, &article.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		if publishedAt != nil {
			article.PublishedAt = *publishedAt
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error article iteration: %w", err)
	}
	return articles, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
