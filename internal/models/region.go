package models

import (
	"strings"
	"time"
)

// DangerLevel - трехуровневая классификация угрозы для региона
type DangerLevel string

const (
	DangerLevelDanger   DangerLevel = "danger"
	DangerLevelModerate DangerLevel = "moderate"
	DangerLevelNeutral  DangerLevel = "neutral"
)

// NoConflictDescription - описание по умолчанию для региона без сообщений
const NoConflictDescription = "No current reports of conflict"

// ParseDangerLevel приводит произвольную строку к уровню угрозы.
// Второе значение false, если строка не является известным уровнем.
func ParseDangerLevel(s string) (DangerLevel, bool) {
	switch DangerLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DangerLevelDanger:
		return DangerLevelDanger, true
	case DangerLevelModerate:
		return DangerLevelModerate, true
	case DangerLevelNeutral:
		return DangerLevelNeutral, true
	}
	return DangerLevelNeutral, false
}

// RegionStatus - классификация одного региона в рамках одного запуска
type RegionStatus struct {
	Name        string      `json:"name"`
	DangerLevel DangerLevel `json:"dangerLevel"`
	Description string      `json:"description"`
	LastUpdated time.Time   `json:"lastUpdated"`
}
