package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
)

// PromptBuilder строит инструкцию для модели по отфильтрованным статьям
type PromptBuilder struct {
	conflict    string
	regions     []string
	maxChars    int
	incidentCap int
}

func NewPromptBuilder(tax *taxonomy.Taxonomy, maxChars, incidentCap int) *PromptBuilder {
	conflict := tax.Conflict
	if conflict == "" {
		conflict = "regional"
	}
	return &PromptBuilder{
		conflict:    conflict,
		regions:     tax.RegionNames(),
		maxChars:    maxChars,
		incidentCap: incidentCap,
	}
}

// Build возвращает полный текст запроса. Блок статей обрезается по числу символов
// без учета границ статей, поэтому последние статьи пакета могут не попасть в запрос.
func (b *PromptBuilder) Build(articles []models.Article) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Based on these news articles about the %s conflict, classify the current threat level of every region listed below and extract notable incidents.\n\n", b.conflict)

	sb.WriteString("Danger levels:\n")
	sb.WriteString("- danger: active hostilities, shelling, strikes or casualties reported in or directly affecting the region\n")
	sb.WriteString("- moderate: heightened alert, troop movements, evacuations, blackouts or credible threats, without confirmed attacks\n")
	sb.WriteString("- neutral: no current reports of conflict affecting the region\n\n")

	sb.WriteString("Regions (use these exact names):\n")
	sb.WriteString(strings.Join(b.regions, ", "))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Incidents: list at most %d notable attacks or incidents. ", b.incidentCap)
	sb.WriteString("Every incident must have city, state and description. ")
	sb.WriteString("Set sourceArticle to the number k of the [Article k] that reports it, or omit it if unsure.\n\n")

	sb.WriteString("Respond with a single JSON object and nothing else, matching this structure:\n")
	sb.WriteString(`{
  "states": [
    {
      "name": "Region Name",
      "dangerLevel": "danger|moderate|neutral",
      "description": "Brief explanation"
    }
  ],
  "attacks": [
    {
      "city": "City Name",
      "state": "Region Name",
      "description": "Description",
      "sourceArticle": 1
    }
  ]
}`)
	sb.WriteString("\n\nHere are the articles:\n")
	sb.WriteString(b.articlesText(articles))
	return sb.String()
}

func (b *PromptBuilder) articlesText(articles []models.Article) string {
	var sb strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&sb, "[Article %d]\nTitle: %s\nSource: %s\n", i+1, a.Title, a.Source)
		if !a.PublishedAt.IsZero() {
			fmt.Fprintf(&sb, "Published: %s\n", a.PublishedAt.UTC().Format(time.RFC3339))
		}
		if a.Summary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", a.Summary)
		}
		fmt.Fprintf(&sb, "URL: %s\n\n", a.URL)
	}
	return truncateRunes(sb.String(), b.maxChars)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
