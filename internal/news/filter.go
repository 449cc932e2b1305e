package news

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/taxonomy"
)

const defaultSummaryLen = 300

// Хвост вида "… [+2345 chars]", который NewsAPI добавляет к content
var truncatedContentSuffix = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// RelevanceFilter отбирает статьи по словарю ключевых слов
type RelevanceFilter struct {
	keywords    []*regexp.Regexp
	maxArticles int
	summaryLen  int
	policy      *bluemonday.Policy
}

// NewRelevanceFilter создает фильтр; maxArticles <= 0 снимает ограничение на размер результата
func NewRelevanceFilter(keywords []string, maxArticles int) *RelevanceFilter {
	kw := make([]*regexp.Regexp, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, taxonomy.KeywordPattern(k))
		}
	}
	return &RelevanceFilter{
		keywords:    kw,
		maxArticles: maxArticles,
		summaryLen:  defaultSummaryLen,
		policy:      bluemonday.StrictPolicy(),
	}
}

// IsRelevant - чистый предикат: заголовок обязателен, и хотя бы одно
// ключевое слово встречается в title + description + content с начала слова
func (f *RelevanceFilter) IsRelevant(a models.Article) bool {
	if strings.TrimSpace(a.Title) == "" {
		return false
	}
	haystack := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
	for _, kw := range f.keywords {
		if kw.MatchString(haystack) {
			return true
		}
	}
	return false
}

// Filter возвращает релевантные статьи с кратким описанием, новые первыми.
// Входной срез не изменяется.
func (f *RelevanceFilter) Filter(articles []models.Article) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if !f.IsRelevant(a) {
			continue
		}
		a.Summary = f.summarize(a)
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	if f.maxArticles > 0 && len(out) > f.maxArticles {
		out = out[:f.maxArticles]
	}
	return out
}

func (f *RelevanceFilter) summarize(a models.Article) string {
	text := f.plainText(a.Description)
	if text == "" {
		text = f.plainText(truncatedContentSuffix.ReplaceAllString(a.Content, ""))
	}
	if utf8.RuneCountInString(text) <= f.summaryLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:f.summaryLen])) + "..."
}

func (f *RelevanceFilter) plainText(s string) string {
	s = html.UnescapeString(f.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
