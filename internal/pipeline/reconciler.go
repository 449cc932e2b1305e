package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/border_conflict_monitor/internal/ai"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
)

const unknownLocation = "Unknown"

// Reconciler сводит ответ модели с перечнем регионов и ограничивает список инцидентов
type Reconciler struct {
	regions     []taxonomy.Region
	incidentCap int
}

// NewReconciler создает Reconciler; отрицательный incidentCap считается нулевым
func NewReconciler(regions []taxonomy.Region, incidentCap int) *Reconciler {
	if incidentCap < 0 {
		incidentCap = 0
	}
	return &Reconciler{
		regions:     regions,
		incidentCap: incidentCap,
	}
}

// Reconcile возвращает ровно один статус на каждый регион перечня и не более
// incidentCap инцидентов. articles - тот же пакет, что был передан в запрос модели.
func (r *Reconciler) Reconcile(analysis *ai.RawAnalysis, articles []models.Article, now time.Time) ([]models.RegionStatus, []models.Incident) {
	return r.reconcileStates(analysis.States, now), r.reconcileAttacks(analysis.Attacks, articles, now)
}

func (r *Reconciler) reconcileStates(raw []ai.RawState, now time.Time) []models.RegionStatus {
	byName := make(map[string]ai.RawState, len(raw))
	for _, st := range raw {
		key := normalizeName(st.Name)
		if key == "" {
			continue
		}
		// при повторе побеждает первое упоминание
		if _, ok := byName[key]; !ok {
			byName[key] = st
		}
	}

	statuses := make([]models.RegionStatus, 0, len(r.regions))
	for _, region := range r.regions {
		st, ok := byName[normalizeName(region.Name)]
		if !ok {
			statuses = append(statuses, neutralStatus(region.Name, now))
			continue
		}

		level, _ := models.ParseDangerLevel(st.DangerLevel)
		description := st.Description
		if description == "" {
			description = defaultDescription(level)
		}
		statuses = append(statuses, models.RegionStatus{
			Name:        region.Name,
			DangerLevel: level,
			Description: description,
			LastUpdated: now,
		})
	}
	return statuses
}

func (r *Reconciler) reconcileAttacks(raw []ai.RawAttack, articles []models.Article, now time.Time) []models.Incident {
	incidents := make([]models.Incident, 0, min(len(raw), r.incidentCap))
	for _, attack := range raw {
		if len(incidents) >= r.incidentCap {
			break
		}
		if attack.City == "" && attack.State == "" && attack.Description == "" {
			continue
		}

		incident := models.Incident{
			City:        orUnknown(attack.City),
			Region:      orUnknown(attack.State),
			Description: attack.Description,
			Timestamp:   now,
		}
		if idx := attack.SourceArticle; idx != nil && *idx >= 1 && *idx <= len(articles) {
			incident.SourceArticleURL = articles[*idx-1].URL
		}
		incidents = append(incidents, incident)
	}
	return incidents
}

func neutralStatus(name string, now time.Time) models.RegionStatus {
	return models.RegionStatus{
		Name:        name,
		DangerLevel: models.DangerLevelNeutral,
		Description: models.NoConflictDescription,
		LastUpdated: now,
	}
}

func defaultDescription(level models.DangerLevel) string {
	if level == models.DangerLevelNeutral {
		return models.NoConflictDescription
	}
	return fmt.Sprintf("Classified as %s based on recent reports", level)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func orUnknown(s string) string {
	if s == "" {
		return unknownLocation
	}
	return s
}
