package models

import "time"

// SnapshotSource описывает, каким путем был получен снимок
type SnapshotSource string

const (
	SourceLive     SnapshotSource = "live"
	SourceDegraded SnapshotSource = "degraded"
	SourceQuiet    SnapshotSource = "quiet"
	SourceCached   SnapshotSource = "cached"
	SourceDefault  SnapshotSource = "default"
)

// Fresh сообщает, был ли снимок построен текущим запуском конвейера
func (s SnapshotSource) Fresh() bool {
	return s == SourceLive || s == SourceDegraded || s == SourceQuiet
}

// ConflictSnapshot - полный результат одного запуска конвейера
type ConflictSnapshot struct {
	RegionStatuses []RegionStatus `json:"regionStatuses"`
	Incidents      []Incident     `json:"incidents"`
	Articles       []Article      `json:"articles"`
	LastUpdated    time.Time      `json:"lastUpdated"`
	Source         SnapshotSource `json:"source"`
}

// RegionsWithLevel возвращает имена регионов с заданным уровнем угрозы
func (s *ConflictSnapshot) RegionsWithLevel(level DangerLevel) []string {
	names := make([]string, 0)
	for _, st := range s.RegionStatuses {
		if st.DangerLevel == level {
			names = append(names, st.Name)
		}
	}
	return names
}

// SnapshotEvent - уведомление о сохранении нового снимка
type SnapshotEvent struct {
	LastUpdated     time.Time      `json:"lastUpdated"`
	Source          SnapshotSource `json:"source"`
	DangerRegions   []string       `json:"dangerRegions"`
	ModerateRegions []string       `json:"moderateRegions"`
	IncidentCount   int            `json:"incidentCount"`
}

// NewSnapshotEvent строит уведомление по снимку
func NewSnapshotEvent(s *ConflictSnapshot) SnapshotEvent {
	return SnapshotEvent{
		LastUpdated:     s.LastUpdated,
		Source:          s.Source,
		DangerRegions:   s.RegionsWithLevel(DangerLevelDanger),
		ModerateRegions: s.RegionsWithLevel(DangerLevelModerate),
		IncidentCount:   len(s.Incidents),
	}
}
