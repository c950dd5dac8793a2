package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScoreAllSafe(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Water", Safety: SafetyLevelSafe},
		{Name: "Glycerin", Safety: SafetyLevelSafe},
	}

	// mean 100 * 0.7 = 70
	assert.Equal(t, 70, ComputeScore(ingredients, HealthProfile{}))
}

func TestComputeScoreMixedLevels(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Water", Safety: SafetyLevelSafe},       // 100
		{Name: "Fragrance", Safety: SafetyLevelCaution}, // 65
		{Name: "Triclosan", Safety: SafetyLevelUnsafe},  // 20
	}

	// (100+65+20)/3 = 61 (整數除法), 61*0.7 = 42, unsafe 再扣 5 -> 37
	assert.Equal(t, 37, ComputeScore(ingredients, HealthProfile{}))
}

func TestComputeScoreSingleUnsafe(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Triclosan", Safety: SafetyLevelUnsafe},
	}

	// 20*0.7 = 14, unsafe 再扣 5 -> 9
	assert.Equal(t, 9, ComputeScore(ingredients, HealthProfile{}))
}

func TestComputeScoreEmptyIngredients(t *testing.T) {
	// 沒有成分資料時用中性基礎分 50*0.7 = 35
	assert.Equal(t, 35, ComputeScore(nil, HealthProfile{}))
	assert.Equal(t, 35, ComputeScore([]Ingredient{}, HealthProfile{}))
}

func TestComputeScoreAllergyPenalty(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Sodium Laureth Sulfate", Safety: SafetyLevelSafe},
		{Name: "Water", Safety: SafetyLevelSafe},
	}
	profile := HealthProfile{Allergies: []string{"Sulfate"}}

	// mean 100 * 0.7 = 70, 一個成分命中過敏原 -> 70-20 = 50
	assert.Equal(t, 50, ComputeScore(ingredients, profile))
}

func TestComputeScoreAllergyMatchIsCaseInsensitive(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "COCAMIDOPROPYL BETAINE", Safety: SafetyLevelSafe},
	}
	profile := HealthProfile{Allergies: []string{"  betaine  "}}

	assert.Equal(t, 50, ComputeScore(ingredients, profile))
}

func TestComputeScoreSingleIngredientSinglePenalty(t *testing.T) {
	// 同一成分命中多個過敏原條目也只扣一次
	ingredients := []Ingredient{
		{Name: "Peanut Milk Extract", Safety: SafetyLevelSafe},
	}
	profile := HealthProfile{Allergies: []string{"peanut", "milk"}}

	assert.Equal(t, 50, ComputeScore(ingredients, profile))
}

func TestComputeScoreClampedToZero(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Peanut Oil", Safety: SafetyLevelUnsafe},
		{Name: "Milk Solids", Safety: SafetyLevelUnsafe},
		{Name: "Soy Lecithin", Safety: SafetyLevelUnsafe},
	}
	profile := HealthProfile{Allergies: []string{"peanut", "milk", "soy"}}

	// mean 20 * 0.7 = 14, -15 unsafe, -60 過敏 -> 遠低於 0，夾到 0
	assert.Equal(t, 0, ComputeScore(ingredients, profile))
}

func TestComputeScoreOrderInsensitive(t *testing.T) {
	a := []Ingredient{
		{Name: "Water", Safety: SafetyLevelSafe},
		{Name: "Alcohol", Safety: SafetyLevelCaution},
		{Name: "Triclosan", Safety: SafetyLevelUnsafe},
	}
	b := []Ingredient{a[2], a[0], a[1]}

	profile := HealthProfile{Allergies: []string{"alcohol"}}
	assert.Equal(t, ComputeScore(a, profile), ComputeScore(b, profile))
}

func TestComputeScoreIgnoresBlankAllergies(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Water", Safety: SafetyLevelSafe},
	}
	profile := HealthProfile{Allergies: []string{"", "   "}}

	// 空白過敏原條目不得比對到任何成分
	assert.Equal(t, 70, ComputeScore(ingredients, profile))
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, "severe", ScoreBand(0))
	assert.Equal(t, "severe", ScoreBand(29))
	assert.Equal(t, "caution", ScoreBand(30))
	assert.Equal(t, "caution", ScoreBand(59))
	assert.Equal(t, "acceptable", ScoreBand(60))
	assert.Equal(t, "acceptable", ScoreBand(100))
}
