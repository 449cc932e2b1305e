package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/border_conflict_monitor/internal/ai"
	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
)

func TestParseResponse_WithSurroundingProse(t *testing.T) {
	text := "Here is the analysis you asked for:\n```json\n" + `{
  "states": [
    {"name": "Punjab", "dangerLevel": "danger", "description": "Shelling near Amritsar"},
    {"name": "Kerala", "dangerLevel": "neutral", "description": ""}
  ],
  "attacks": [
    {"city": "Amritsar", "state": "Punjab", "description": "Drone strike", "sourceArticle": 2},
    {"city": "Jammu", "state": "Jammu and Kashmir", "description": "Shelling"}
  ]
}` + "\n```\nLet me know if you need more."

	analysis, err := ai.ParseResponse(text)

	require.NoError(t, err)
	require.Len(t, analysis.States, 2)
	assert.Equal(t, ai.RawState{Name: "Punjab", DangerLevel: "danger", Description: "Shelling near Amritsar"}, analysis.States[0])
	require.Len(t, analysis.Attacks, 2)
	require.NotNil(t, analysis.Attacks[0].SourceArticle)
	assert.Equal(t, 2, *analysis.Attacks[0].SourceArticle)
	assert.Nil(t, analysis.Attacks[1].SourceArticle)
	assert.Equal(t, "Jammu and Kashmir", analysis.Attacks[1].State)
}

func TestParseResponse_NoObject(t *testing.T) {
	_, err := ai.ParseResponse("I cannot help with that request.")

	assert.ErrorIs(t, err, apperrors.ErrMalformedResponse)
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := ai.ParseResponse(`{"states": [ {"name": "Punjab", } ]`+"}")

	assert.ErrorIs(t, err, apperrors.ErrMalformedResponse)
}

func TestParseResponse_ToleratesShapeVariations(t *testing.T) {
	text := `{
  "regions": [{"state": "Gujarat", "level": "Moderate"}, "junk", null],
  "incidents": [{"city": "Bhuj", "region": "Gujarat", "description": "Blackout", "sourceArticle": "3"},
                {"city": "Jaisalmer", "description": "x", "sourceArticle": 1.5}],
  "unexpected": true
}`

	analysis, err := ai.ParseResponse(text)

	require.NoError(t, err)
	require.Len(t, analysis.States, 1)
	assert.Equal(t, "Gujarat", analysis.States[0].Name)
	assert.Equal(t, "Moderate", analysis.States[0].DangerLevel)
	require.Len(t, analysis.Attacks, 2)
	require.NotNil(t, analysis.Attacks[0].SourceArticle)
	assert.Equal(t, 3, *analysis.Attacks[0].SourceArticle)
	assert.Nil(t, analysis.Attacks[1].SourceArticle)
	assert.Empty(t, analysis.Attacks[1].State)
}

func TestParseResponse_EmptyObject(t *testing.T) {
	analysis, err := ai.ParseResponse("{}")

	require.NoError(t, err)
	assert.Empty(t, analysis.States)
	assert.Empty(t, analysis.Attacks)
}

func TestParseResponse_WrongFieldTypes(t *testing.T) {
	analysis, err := ai.ParseResponse(`{"states": "none", "attacks": [{"city": 5, "state": "Punjab"}]}`)

	require.NoError(t, err)
	assert.Empty(t, analysis.States)
	require.Len(t, analysis.Attacks, 1)
	assert.Empty(t, analysis.Attacks[0].City)
	assert.Equal(t, "Punjab", analysis.Attacks[0].State)
}
