// Package apperrors содержит таксономию ошибок конвейера: ошибки конфигурации,
// транспорта и разбора ответа модели.
package apperrors

import (
	"errors"
	"fmt"
)

const (
	ServiceNewsAPI  = "newsapi"
	ServiceRSS      = "rss"
	ServiceGemini   = "gemini"
	ServicePostgres = "postgres"
	ServiceRedis    = "redis"
)

var (
	// ErrMalformedResponse - ответ модели не содержит разбираемого JSON-объекта
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrModelUnavailable - транспорт модели структурно недоступен
	ErrModelUnavailable = errors.New("model unavailable")
)

// ConfigurationError - отсутствуют учетные данные внешнего сервиса
type ConfigurationError struct {
	Service string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s key missing", e.Service)
}

// TransportError - сетевая ошибка или таймаут при обращении к внешнему сервису
type TransportError struct {
	Service string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfiguration сообщает, является ли err ошибкой конфигурации
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
