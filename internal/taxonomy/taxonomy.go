// Package taxonomy содержит закрытый перечень регионов и словарь ключевых слов,
// по которым конвейер строит поисковые запросы и отбирает релевантные статьи.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

const (
	minKeywordLen = 3
	// ключевые слова короче этой длины совпадают только целым словом
	shortKeywordLen = 5
)

// Обычные слова из заголовков, которые не должны совпадать ни с одним ключевым словом
var commonWords = []string{
	"during", "curious", "jury", "bureau", "luxury", "goal", "goalkeeper", "extension",
	"pretension", "local", "festival", "armistice", "bordeaux", "drugs", "recipe",
	"tournament", "football", "concert", "fashion", "weather",
}

// Region - один регион из фиксированного перечня
type Region struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Border  bool     `yaml:"-"`
}

// Taxonomy - перечень регионов и ключевых слов
type Taxonomy struct {
	Adversary      string   `yaml:"adversary"`
	Conflict       string   `yaml:"conflict"`
	GeneralQueries []string `yaml:"general_queries"`
	RegionGroups   struct {
		Border   []Region `yaml:"border"`
		Interior []Region `yaml:"interior"`
	} `yaml:"regions"`
	KeywordGroups map[string][]string `yaml:"keywords"`

	regions  []Region
	keywords []string
}

// Default возвращает встроенную таксономию
func Default() *Taxonomy {
	t, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Parse разбирает и проверяет таксономию в формате YAML
func Parse(data []byte) (*Taxonomy, error) {
	t := &Taxonomy{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("taxonomy: failed to parse: %w", err)
	}
	if err := t.build(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Taxonomy) build() error {
	if t.Adversary == "" {
		return errors.New("taxonomy: adversary is required")
	}

	seen := make(map[string]struct{})
	add := func(r Region, border bool) error {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return errors.New("taxonomy: region name is empty")
		}
		key := strings.ToLower(r.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("taxonomy: duplicate region %q", r.Name)
		}
		seen[key] = struct{}{}
		r.Border = border
		t.regions = append(t.regions, r)
		return nil
	}
	for _, r := range t.RegionGroups.Border {
		if err := add(r, true); err != nil {
			return err
		}
	}
	for _, r := range t.RegionGroups.Interior {
		if err := add(r, false); err != nil {
			return err
		}
	}
	if len(t.regions) == 0 {
		return errors.New("taxonomy: no regions defined")
	}

	kwSeen := make(map[string]struct{})
	addKeyword := func(kw string) error {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return nil
		}
		if _, dup := kwSeen[kw]; dup {
			return nil
		}
		if err := checkKeyword(kw); err != nil {
			return err
		}
		kwSeen[kw] = struct{}{}
		t.keywords = append(t.keywords, kw)
		return nil
	}
	for _, group := range []string{"conflict", "adversary", "security"} {
		for _, kw := range t.KeywordGroups[group] {
			if err := addKeyword(kw); err != nil {
				return err
			}
		}
	}
	for _, r := range t.regions {
		if err := addKeyword(r.Name); err != nil {
			return err
		}
		for _, alias := range r.Aliases {
			if err := addKeyword(alias); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkKeyword отклоняет слишком короткие ключевые слова и слова,
// совпадающие с обычными словами заголовков
func checkKeyword(kw string) error {
	if utf8.RuneCountInString(kw) < minKeywordLen {
		return fmt.Errorf("taxonomy: keyword %q is too short", kw)
	}
	pattern := KeywordPattern(kw)
	for _, word := range commonWords {
		if word != kw && pattern.MatchString(word) {
			return fmt.Errorf("taxonomy: keyword %q matches common word %q", kw, word)
		}
	}
	return nil
}

// KeywordPattern возвращает выражение поиска ключевого слова в тексте в нижнем регистре.
// Совпадение начинается на границе слова, поэтому "tension" не находится в "extension".
// Короткие слова вроде "uri" или "goa" совпадают только целиком.
func KeywordPattern(kw string) *regexp.Regexp {
	expr := `\b` + regexp.QuoteMeta(kw)
	if utf8.RuneCountInString(kw) < shortKeywordLen {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

// Regions возвращает все регионы: сначала приграничные, затем внутренние
func (t *Taxonomy) Regions() []Region {
	out := make([]Region, len(t.regions))
	copy(out, t.regions)
	return out
}

// RegionNames возвращает имена регионов в порядке перечня
func (t *Taxonomy) RegionNames() []string {
	names := make([]string, len(t.regions))
	for i, r := range t.regions {
		names[i] = r.Name
	}
	return names
}

// Keywords возвращает словарь релевантности в нижнем регистре
func (t *Taxonomy) Keywords() []string {
	out := make([]string, len(t.keywords))
	copy(out, t.keywords)
	return out
}

// Queries возвращает общие запросы и по одному запросу на регион
func (t *Taxonomy) Queries() []string {
	queries := make([]string, 0, len(t.GeneralQueries)+len(t.regions))
	queries = append(queries, t.GeneralQueries...)
	for _, r := range t.regions {
		queries = append(queries, fmt.Sprintf("%s current condition %s", r.Name, t.Adversary))
	}
	return queries
}
