package models

import (
	"fmt"
	"time"
)

// Incident - заметное происшествие, извлеченное моделью из новостей
type Incident struct {
	City             string    `json:"city"`
	Region           string    `json:"region"`
	Description      string    `json:"description"`
	Timestamp        time.Time `json:"timestamp"`
	SourceArticleURL string    `json:"sourceArticleUrl,omitempty"`
}

// Key возвращает ключ хранения инцидента в формате "<city>_<timestamp>"
func (i Incident) Key() string {
	return fmt.Sprintf("%s_%d", i.City, i.Timestamp.UnixMilli())
}
