package scan

import (
	"context"
	"testing"

	"safescan/internal/core/ai/service"
	"safescan/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterWarningsDropsIncompleteEntries(t *testing.T) {
	warnings := []Warning{
		{Ingredient: "Sugar", Issue: "flagged for diabetes"},
		{Ingredient: "", Issue: "orphan issue"},
		{Ingredient: "Sodium", Issue: ""},
		{Ingredient: "   ", Issue: "blank ingredient"},
		{Ingredient: "Caffeine", Issue: "flagged for GERD"},
	}

	kept := filterWarnings(warnings)
	require.Len(t, kept, 2)
	assert.Equal(t, "Sugar", kept[0].Ingredient)
	assert.Equal(t, "Caffeine", kept[1].Ingredient)
}

func TestAnalyzeParsesResponse(t *testing.T) {
	stub := &stubCompleter{
		safetyResp: `{
			"allergenMatches": ["Peanut Oil", ""],
			"warnings": [
				{"ingredient": "Sugar", "issue": "flagged for diabetes"},
				{"ingredient": "", "issue": "incomplete"}
			],
			"overallSafetyScore": "42"
		}`,
	}
	svc := NewSafetyService(service.NewService(&config.Config{}, stub, nil))

	profile := HealthProfile{
		Allergies:         []string{"peanut"},
		MedicalConditions: []string{"diabetes"},
	}
	finding, advisory, rawJSON, err := svc.Analyze(context.Background(), []string{"Sugar", "Peanut Oil"}, profile)
	require.NoError(t, err)

	// 空字串的過敏原命中與不完整的警告要被丟掉
	assert.Equal(t, []string{"Peanut Oil"}, finding.AllergenMatches)
	require.Len(t, finding.Warnings, 1)
	assert.Equal(t, "Sugar", finding.Warnings[0].Ingredient)

	// 數字字串形式的 overallSafetyScore 也要收
	assert.Equal(t, 42, advisory)
	assert.Contains(t, rawJSON, "overallSafetyScore")
}

func TestAnalyzeMissingAdvisoryScoreFallsBack(t *testing.T) {
	stub := &stubCompleter{
		safetyResp: `{"allergenMatches":[],"warnings":[]}`,
	}
	svc := NewSafetyService(service.NewService(&config.Config{}, stub, nil))

	_, advisory, _, err := svc.Analyze(context.Background(), []string{"Water"}, HealthProfile{})
	require.NoError(t, err)
	assert.Equal(t, defaultAdvisoryScore, advisory)
}

func TestAnalyzeMalformedResponseFails(t *testing.T) {
	stub := &stubCompleter{
		safetyResp: `{"allergenMatches": oops}`,
	}
	svc := NewSafetyService(service.NewService(&config.Config{}, stub, nil))

	_, _, _, err := svc.Analyze(context.Background(), []string{"Water"}, HealthProfile{})
	require.Error(t, err)
}
