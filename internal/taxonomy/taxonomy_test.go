package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_RegionEnumeration(t *testing.T) {
	tax := Default()

	regions := tax.Regions()
	require.Len(t, regions, 30)

	assert.Equal(t, "Jammu and Kashmir", regions[0].Name)
	assert.True(t, regions[0].Border)

	border := 0
	for _, r := range regions {
		if r.Border {
			border++
		}
	}
	assert.Equal(t, 4, border)
	assert.Contains(t, tax.RegionNames(), "Arunachal Pradesh")
}

func TestDefault_KeywordsIncludeRegionsAndAliases(t *testing.T) {
	kw := Default().Keywords()

	assert.Contains(t, kw, "shelling")
	assert.Contains(t, kw, "pakistan")
	assert.Contains(t, kw, "punjab")
	assert.Contains(t, kw, "jammu and kashmir")
	assert.Contains(t, kw, "srinagar")
	assert.NotContains(t, kw, "loc") // подстрока "local" дала бы ложные срабатывания
}

func TestDefault_Queries(t *testing.T) {
	tax := Default()
	queries := tax.Queries()

	assert.Len(t, queries, len(tax.GeneralQueries)+len(tax.Regions()))
	assert.Equal(t, "india pakistan conflict", queries[0])
	assert.Contains(t, queries, "Punjab current condition pakistan")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "adversary: [",
			wantErr: "failed to parse",
		},
		{
			name:    "missing adversary",
			yaml:    "regions:\n  border:\n    - name: A\n",
			wantErr: "adversary is required",
		},
		{
			name:    "no regions",
			yaml:    "adversary: x\n",
			wantErr: "no regions defined",
		},
		{
			name:    "keyword too short",
			yaml:    "adversary: x\nregions:\n  border:\n    - name: Border Land\n      aliases: [ur]\n",
			wantErr: `keyword "ur" is too short`,
		},
		{
			name:    "alias matches common word",
			yaml:    "adversary: x\nregions:\n  border:\n    - name: Border Land\n      aliases: [curio]\n",
			wantErr: `keyword "curio" matches common word "curious"`,
		},
		{
			name:    "keyword matches common word",
			yaml:    "adversary: x\nregions:\n  border:\n    - name: Border Land\nkeywords:\n  conflict: [extens]\n",
			wantErr: `keyword "extens" matches common word "extension"`,
		},
		{
			name:    "duplicate region",
			yaml:    "adversary: x\nregions:\n  border:\n    - name: A\n  interior:\n    - name: a\n",
			wantErr: "duplicate region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_DeduplicatesKeywords(t *testing.T) {
	tax, err := Parse([]byte(`
adversary: x
regions:
  border:
    - name: Border Land
      aliases: [attack]
keywords:
  security: [Attack, attack, " "]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"attack", "border land"}, tax.Keywords())
}

func TestDefault_KeywordsDoNotMatchCommonWords(t *testing.T) {
	for _, kw := range Default().Keywords() {
		pattern := KeywordPattern(kw)
		for _, word := range commonWords {
			assert.False(t, pattern.MatchString(word), "keyword %q matches %q", kw, word)
		}
	}
}

func TestKeywordPattern(t *testing.T) {
	tests := []struct {
		keyword string
		text    string
		want    bool
	}{
		{keyword: "tension", text: "border tensions rise", want: true},
		{keyword: "tension", text: "battery life extension", want: false},
		{keyword: "uri", text: "shelling in uri sector", want: true},
		{keyword: "uri", text: "during the security review", want: false},
		{keyword: "goa", text: "flights to goa resume", want: true},
		{keyword: "goa", text: "late goal decides match", want: false},
		{keyword: "army", text: "the army's statement", want: true},
		{keyword: "line of control", text: "firing along the line of control", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.keyword+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordPattern(tt.keyword).MatchString(tt.text))
		})
	}
}
