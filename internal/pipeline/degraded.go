package pipeline

import (
	"fmt"
	"time"

	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
)

// NeutralSnapshot строит снимок, в котором все регионы нейтральны и инцидентов нет
func NeutralSnapshot(regions []taxonomy.Region, now time.Time, source models.SnapshotSource) *models.ConflictSnapshot {
	statuses := make([]models.RegionStatus, 0, len(regions))
	for _, region := range regions {
		statuses = append(statuses, neutralStatus(region.Name, now))
	}
	return &models.ConflictSnapshot{
		RegionStatuses: statuses,
		Incidents:      make([]models.Incident, 0),
		Articles:       make([]models.Article, 0),
		LastUpdated:    now,
		Source:         source,
	}
}

// DegradedSnapshot - локальная эвристика на случай недоступности модели:
// при наличии хотя бы одной статьи приграничные регионы получают moderate,
// внутренние остаются нейтральными.
func DegradedSnapshot(regions []taxonomy.Region, articles []models.Article, now time.Time) *models.ConflictSnapshot {
	snapshot := NeutralSnapshot(regions, now, models.SourceDegraded)
	snapshot.Articles = articles
	if len(articles) == 0 {
		return snapshot
	}

	description := fmt.Sprintf("Elevated alert: %d recent reports on the conflict, automated assessment unavailable", len(articles))
	for i, region := range regions {
		if !region.Border {
			continue
		}
		snapshot.RegionStatuses[i].DangerLevel = models.DangerLevelModerate
		snapshot.RegionStatuses[i].Description = description
	}
	return snapshot
}
