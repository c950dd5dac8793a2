package scan

import "strings"

// 各安全等級的基礎分
const (
	baseScoreSafe    = 100
	baseScoreCaution = 65
	baseScoreUnsafe  = 20

	// 沒有成分資料時的中性預設，「沒資料」不等於「安全」
	baseScoreNeutral = 50

	// 0.7 權重保留三成的扣分空間：即使成分組合整體良性，
	// 一筆過敏命中或 unsafe 成分仍然能明顯拉低分數
	ingredientWeight = 0.7

	unsafePenalty  = 5
	allergyPenalty = 20
)

// ComputeScore 計算 0-100 安全分數。純本地運算，不經過 LLM：
// 分數要可重現、可測試，不能交給生成式模型。
//
//  1. 等級對應基礎分：safe=100 / caution=65 / unsafe=20
//  2. 取整數平均（空清單用 50）
//  3. 乘以 0.7 取整
//  4. 每個 unsafe 成分再扣 5（平均之外針對紅色成分的二次懲罰）
//  5. 成分名稱含任一過敏原子字串的，每個成分扣 20（一個成分只扣一次）
//  6. 夾住在 [0, 100]
//
// 對成分順序不敏感，同樣輸入永遠得到同樣輸出。
func ComputeScore(ingredients []Ingredient, profile HealthProfile) int {
	ingredientScore := baseScoreNeutral
	if len(ingredients) > 0 {
		sum := 0
		for _, ing := range ingredients {
			switch ing.Safety {
			case SafetyLevelUnsafe:
				sum += baseScoreUnsafe
			case SafetyLevelCaution:
				sum += baseScoreCaution
			default:
				sum += baseScoreSafe
			}
		}
		ingredientScore = sum / len(ingredients)
	}

	score := int(float64(ingredientScore) * ingredientWeight)

	for _, ing := range ingredients {
		if ing.Safety == SafetyLevelUnsafe {
			score -= unsafePenalty
		}
	}

	// 過敏原懲罰：大小寫不敏感的子字串比對，每個命中的成分扣一次
	allergies := make([]string, 0, len(profile.Allergies))
	for _, a := range profile.Allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			allergies = append(allergies, a)
		}
	}
	for _, ing := range ingredients {
		name := strings.ToLower(ing.Name)
		for _, allergy := range allergies {
			if strings.Contains(name, allergy) {
				score -= allergyPenalty
				break
			}
		}
	}

	// 夾住在 [0, 100]
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ScoreBand 把分數對應到顯示用的嚴重度分級，
// 所有顯示介面統一使用這一組切點：<30 嚴重、30-59 注意、>=60 可接受
func ScoreBand(score int) string {
	switch {
	case score < 30:
		return "severe"
	case score < 60:
		return "caution"
	default:
		return "acceptable"
	}
}
