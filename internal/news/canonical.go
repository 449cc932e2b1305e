package news

import (
	"net/url"
	"sort"
	"strings"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

// Параметры отслеживания, не влияющие на содержимое страницы
var trackingParams = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"ocid":    {},
	"cmpid":   {},
	"ref":     {},
	"ref_src": {},
}

// CanonicalURL приводит URL статьи к виду для сравнения дубликатов:
// схема и хост в нижнем регистре, без "www.", без фрагмента, без завершающего слэша,
// без параметров отслеживания, параметры запроса отсортированы.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	if parsed.RawQuery != "" {
		params := parsed.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			lk := strings.ToLower(k)
			if strings.HasPrefix(lk, "utm_") {
				continue
			}
			if _, tracking := trackingParams[lk]; tracking {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				if buf.Len() > 0 {
					buf.WriteByte('&')
				}
				buf.WriteString(url.QueryEscape(k))
				buf.WriteByte('=')
				buf.WriteString(url.QueryEscape(v))
			}
		}
		parsed.RawQuery = buf.String()
	}

	return parsed.String()
}

// Dedup удаляет статьи с совпадающим каноническим URL, первое вхождение остается.
// Статьи без URL отбрасываются: их нельзя ни дедуплицировать, ни процитировать.
func Dedup(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if strings.TrimSpace(a.URL) == "" {
			continue
		}
		key := CanonicalURL(a.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
