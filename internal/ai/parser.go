package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
)

// Жадное совпадение от первой "{" до последней "}"
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// RawState - классификация региона в том виде, в каком ее вернула модель
type RawState struct {
	Name        string
	DangerLevel string
	Description string
}

// RawAttack - инцидент в том виде, в каком его вернула модель.
// SourceArticle - номер статьи в пакете, начиная с 1.
type RawAttack struct {
	City          string
	State         string
	Description   string
	SourceArticle *int
}

// RawAnalysis - разобранный, но не проверенный ответ модели
type RawAnalysis struct {
	States  []RawState
	Attacks []RawAttack
}

// ParseResponse извлекает JSON-объект из свободного текста модели.
// Отсутствие объекта или ошибка разбора возвращаются как ErrMalformedResponse.
func ParseResponse(text string) (*RawAnalysis, error) {
	match := jsonObjectRe.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON object found", apperrors.ErrMalformedResponse)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}

	analysis := &RawAnalysis{
		States:  make([]RawState, 0),
		Attacks: make([]RawAttack, 0),
	}

	for _, obj := range objectList(doc, "states", "regions", "stateStatuses") {
		analysis.States = append(analysis.States, RawState{
			Name:        stringField(obj, "name", "state", "region"),
			DangerLevel: stringField(obj, "dangerLevel", "danger_level", "level"),
			Description: stringField(obj, "description"),
		})
	}
	for _, obj := range objectList(doc, "attacks", "incidents") {
		analysis.Attacks = append(analysis.Attacks, RawAttack{
			City:          stringField(obj, "city"),
			State:         stringField(obj, "state", "region"),
			Description:   stringField(obj, "description"),
			SourceArticle: intField(obj, "sourceArticle", "source_article"),
		})
	}
	return analysis, nil
}

// objectList возвращает элементы первого найденного массива; элементы, не являющиеся
// объектами, пропускаются
func objectList(doc map[string]json.RawMessage, keys ...string) []map[string]json.RawMessage {
	for _, key := range keys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := make([]map[string]json.RawMessage, 0, len(items))
		for _, item := range items {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
				continue
			}
			out = append(out, obj)
		}
		return out
	}
	return nil
}

func stringField(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	return ""
}

func intField(obj map[string]json.RawMessage, keys ...string) *int {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = []byte(strings.TrimSpace(s))
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f != float64(int(f)) {
			return nil
		}
		n := int(f)
		return &n
	}
	return nil
}
