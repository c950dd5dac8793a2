package scan

import (
	"context"
	"testing"

	"safescan/internal/core/ai/service"
	"safescan/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInfoService(stub *stubCompleter) *InfoService {
	return NewInfoService(service.NewService(&config.Config{}, stub, nil))
}

func TestAnnotateEmptyNames(t *testing.T) {
	svc := newInfoService(&stubCompleter{})

	// 空清單不打推論服務，直接回傳空的成分 JSON
	ingredients, rawJSON, err := svc.Annotate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ingredients)
	assert.Equal(t, `{"ingredients":[]}`, rawJSON)
}

func TestAnnotateMapsLevelsAndInfo(t *testing.T) {
	svc := newInfoService(&stubCompleter{
		infoResp: `{"ingredients":[
			{"name":"Water","safetyLevel":0,"info":"solvent"},
			{"name":"Parabens","safetyLevel":2,"info":"preservative, endocrine concern"}
		]}`,
	})

	ingredients, rawJSON, err := svc.Annotate(context.Background(), []string{"Water", "Parabens"})
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, SafetyLevelSafe, ingredients[0].Safety)
	assert.Equal(t, SafetyLevelUnsafe, ingredients[1].Safety)
	assert.Equal(t, "preservative, endocrine concern", ingredients[1].InfoText)
	assert.Contains(t, rawJSON, "Parabens")
}

func TestAnnotateDropsNamelessEntries(t *testing.T) {
	svc := newInfoService(&stubCompleter{
		infoResp: `{"ingredients":[
			{"name":"Water","safetyLevel":0,"info":"solvent"},
			{"name":"","safetyLevel":2,"info":"orphan"},
			{"name":"   ","safetyLevel":1,"info":"blank"}
		]}`,
	})

	ingredients, _, err := svc.Annotate(context.Background(), []string{"Water"})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Water", ingredients[0].Name)
}

func TestAnnotateRepairsFragmentedEntries(t *testing.T) {
	svc := newInfoService(&stubCompleter{
		infoResp: `{"ingredients":[
			{"name":"CAFFEINE(8","safetyLevel":1,"info":"stimulant"},
			{"name":"3 mg/100 g)","safetyLevel":0,"info":""}
		]}`,
	})

	ingredients, _, err := svc.Annotate(context.Background(), []string{"Caffeine"})
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "CAFFEINE(8 3 mg/100 g)", ingredients[0].Name)
	// 合併後沿用開頭碎片的等級
	assert.Equal(t, SafetyLevelCaution, ingredients[0].Safety)
}

func TestAnnotateMalformedResponseFails(t *testing.T) {
	svc := newInfoService(&stubCompleter{
		infoResp: `sorry, no can do`,
	})

	_, _, err := svc.Annotate(context.Background(), []string{"Water"})
	require.Error(t, err)
}
