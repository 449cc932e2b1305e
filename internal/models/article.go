package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article - новостная статья, полученная от поискового сервиса
type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Summary     string    `json:"summary,omitempty"`

	// Сырые поля поиска, участвуют только в фильтрации по релевантности
	Description string `json:"-"`
	Content     string `json:"-"`
}

// Key возвращает стабильный ключ хранения статьи, производный от URL
func (a Article) Key() string {
	sum := sha256.Sum256([]byte(a.URL))
	return hex.EncodeToString(sum[:])
}
