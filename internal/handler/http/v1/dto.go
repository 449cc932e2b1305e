package v1

// NewsQuery DTO параметров запроса новостей
// @Description DTO параметров запроса новостей
type NewsQuery struct {
	Limit *int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// StateStatusResponse DTO статуса региона
// @Description DTO статуса региона
type StateStatusResponse struct {
	Name        string `json:"name"`
	DangerLevel string `json:"dangerLevel" enums:"danger,moderate,neutral"`
	Description string `json:"description"`
	LastUpdated int64  `json:"lastUpdated"`
}

// AttackResponse DTO инцидента
// @Description DTO инцидента
type AttackResponse struct {
	City             string `json:"city"`
	State            string `json:"state"`
	Description      string `json:"description"`
	Timestamp        int64  `json:"timestamp"`
	SourceArticleURL string `json:"sourceArticleUrl,omitempty"`
}

// ArticleResponse DTO новостной статьи
// @Description DTO новостной статьи
type ArticleResponse struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Summary     string `json:"summary,omitempty"`
}

// ConflictDataResponse DTO текущего снимка
// @Description DTO текущего снимка. Время в миллисекундах Unix.
type ConflictDataResponse struct {
	StateStatuses []StateStatusResponse `json:"stateStatuses"`
	Attacks       []AttackResponse      `json:"attacks"`
	Articles      []ArticleResponse     `json:"articles"`
	LastUpdated   int64                 `json:"lastUpdated"`
	Source        string                `json:"source" enums:"live,degraded,quiet,cached,default"`
}

// UpdateResponse DTO результата обновления
// @Description DTO результата обновления
type UpdateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Persisted bool   `json:"persisted"`
}

// NewsResponse DTO списка новостей
// @Description DTO списка новостей
type NewsResponse struct {
	Status       string            `json:"status"`
	Query        string            `json:"query"`
	TotalResults int               `json:"totalResults"`
	Articles     []ArticleResponse `json:"articles"`
}

// ErrorResponse DTO ошибки
// @Description DTO ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}
