package scan

import (
	"strconv"
	"strings"
)

// SafetyLevel 單一成分的三態安全等級，數值對應 LLM 回傳的 safetyLevel
type SafetyLevel int

const (
	SafetyLevelSafe    SafetyLevel = 0
	SafetyLevelCaution SafetyLevel = 1
	SafetyLevelUnsafe  SafetyLevel = 2
)

// String 實現 fmt.Stringer 介面
func (l SafetyLevel) String() string {
	switch l {
	case SafetyLevelCaution:
		return "caution"
	case SafetyLevelUnsafe:
		return "unsafe"
	default:
		return "safe"
	}
}

// Ingredient 修復後的成分，建構後不再修改
type Ingredient struct {
	Name     string      `json:"name"`
	Safety   SafetyLevel `json:"safety_level"`
	InfoText string      `json:"info"`
}

// Category 商品粗分類
type Category string

const (
	CategoryFood       Category = "Food Product"
	CategoryCosmetic   Category = "Cosmetic Item"
	CategoryMedication Category = "Medication"
	// CategoryUnknown 保留給明顯不屬於前三類的商品（椅子、電子產品），
	// 分類器絕對不能把不可食用的東西硬塞進食品類
	CategoryUnknown Category = "Unknown"
)

// NormalizeCategory 把 LLM 回傳的自由文字對應到固定分類。
// 對不上的一律視為 Unknown。
func NormalizeCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "food product", "food", "food item", "beverage":
		return CategoryFood
	case "cosmetic item", "cosmetic", "cosmetics":
		return CategoryCosmetic
	case "medication", "medicine", "drug":
		return CategoryMedication
	default:
		return CategoryUnknown
	}
}

// HealthProfile 使用者健康檔案的唯讀快照。
// 條目是使用者自己輸入的自由文字，比對前必須先 lowercase/trim。
type HealthProfile struct {
	Allergies         []string `json:"allergies"`
	MedicalConditions []string `json:"medical_conditions"`
	Medications       []string `json:"medications"`
}

// Warning 單一成分的警告
type Warning struct {
	Ingredient string `json:"ingredient"`
	Issue      string `json:"issue"`
}

// SafetyFinding 安全分析結果
type SafetyFinding struct {
	AllergenMatches []string  `json:"allergen_matches"`
	Warnings        []Warning `json:"warnings"`
}

// SafetyResult 一次商品掃描的最終產物
type SafetyResult struct {
	ProductName string        `json:"product_name"`
	Category    Category      `json:"category"`
	Score       int           `json:"safety_score"`
	Ingredients []Ingredient  `json:"ingredients"`
	Findings    SafetyFinding `json:"findings"`

	// AdvisoryScore 是 LLM 回應裡自帶的 overallSafetyScore，僅供顯示備援，
	// Score 一律以本地計分為準
	AdvisoryScore int `json:"advisory_score"`

	// 兩個原始 JSON 欄位逐字保留（清理後），供 UI 層之後重新解析顯示
	IngredientsRawJSON string `json:"ingredient_info_json"`
	SafetyRawJSON      string `json:"safety_json"`
}

// rawToken LLM 食材條目的原始形態，欄位可能缺漏或被斷開
type rawToken struct {
	Name        string  `json:"name"`
	Info        string  `json:"info"`
	SafetyLevel flexInt `json:"safetyLevel"`
}

// flexInt 寬鬆整數解碼：模型有時回傳數字、有時回傳數字字串，
// 兩種都接受，解不出來就當作缺值而不是整筆失敗
type flexInt struct {
	Value int
	OK    bool
}

// UnmarshalJSON 實現 json.Unmarshaler 介面
func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)

	// 小數也收，直接截斷
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = int(v)
		f.OK = true
	}
	return nil
}

// toIngredient 把原始條目轉成標準成分，缺漏的安全等級預設為 safe
func (t rawToken) toIngredient() Ingredient {
	level := SafetyLevelSafe
	if t.SafetyLevel.OK {
		switch t.SafetyLevel.Value {
		case 1:
			level = SafetyLevelCaution
		case 2:
			level = SafetyLevelUnsafe
		}
	}
	return Ingredient{
		Name:     t.Name,
		Safety:   level,
		InfoText: t.Info,
	}
}
