package scan

import (
	"context"
	"fmt"
	"strings"

	"safescan/internal/core/ai/service"
	"safescan/internal/pkg/common"

	"go.uber.org/zap"
)

// SafetyService 安全分析服務
type SafetyService struct {
	aiService *service.Service
}

// NewSafetyService 創建新的安全分析服務
func NewSafetyService(aiService *service.Service) *SafetyService {
	return &SafetyService{
		aiService: aiService,
	}
}

// safetyResponse 安全分析調用的回應形狀
type safetyResponse struct {
	AllergenMatches   []string  `json:"allergenMatches"`
	Warnings          []Warning `json:"warnings"`
	OverallSafetyScore flexInt  `json:"overallSafetyScore"`
}

// defaultAdvisoryScore LLM 沒有附上 overallSafetyScore 時的顯示備援值
const defaultAdvisoryScore = 50

// Analyze 把成分清單與健康檔案交叉比對，產出過敏原命中與警告。
// 回傳 finding、LLM 自帶的建議分數（僅顯示備援用）、以及清理後的原始 JSON。
func (s *SafetyService) Analyze(ctx context.Context, ingredients []string, profile HealthProfile) (SafetyFinding, int, string, error) {
	prompt := fmt.Sprintf(`You are a medical-grade safety engine.

INGREDIENTS: [%s]
USER ALLERGIES: [%s]
USER CONDITIONS: [%s]
USER MEDICATIONS: [%s]

--------------------------------------------------------------------
RULES FOR ALERTS:
--------------------------------------------------------------------
1. ALLERGY MATCHING
   - Case-insensitive.
   - If ANY ingredient contains ANY allergen substring -> FLAG IT.

2. CONDITION WARNINGS
   Examples:
   - diabetes -> flag: sugar, high fructose corn syrup, glucose, sucrose
   - hypertension -> flag: sodium, salt, MSG
   - kidney disease -> flag: potassium, creatine
   - GERD -> flag: caffeine, mint
   - pregnancy -> flag: retinol, salicylic acid, benzoyl peroxide

3. MEDICATION INTERACTIONS
   Examples:
   - atorvastatin, simvastatin -> NO grapefruit
   - metformin -> caution with alcohol
   - antihistamines -> avoid alcohol
   - SSRIs -> avoid St. John's Wort
   - blood thinners (warfarin) -> avoid vitamin K rich additives
   - MAOIs -> avoid tyramine (soy sauce, cheese extracts)

IMPORTANT:
- ONLY produce a warning if the ingredient ACTUALLY APPEARS.
- DO NOT invent new ingredients.
- DO NOT hallucinate diseases.
- RETURN ONLY STRICT JSON.

--------------------------------------------------------------------
RETURN FORMAT:
--------------------------------------------------------------------
{
  "allergenMatches": ["..."],
  "warnings": [
    { "ingredient": "<ingredient>", "issue": "<why flagged>" }
  ],
  "overallSafetyScore": 50
}
--------------------------------------------------------------------
JSON ONLY. NO TEXT OUTSIDE JSON.`,
		common.StringSliceToString(ingredients),
		common.StringSliceToString(profile.Allergies),
		common.StringSliceToString(profile.MedicalConditions),
		common.StringSliceToString(profile.Medications),
	)

	content, err := s.aiService.ProcessPrompt(ctx, prompt)
	if err != nil {
		common.LogError("安全分析請求失敗",
			zap.Error(err),
		)
		return SafetyFinding{}, 0, "", err
	}

	var result safetyResponse
	if err := common.ParseJSON(content, &result); err != nil {
		common.LogError("安全分析回應解析失敗",
			zap.Error(err),
		)
		return SafetyFinding{}, 0, "", fmt.Errorf("failed to parse safety analysis response: %w", err)
	}

	finding := SafetyFinding{
		AllergenMatches: make([]string, 0, len(result.AllergenMatches)),
		Warnings:        filterWarnings(result.Warnings),
	}
	for _, match := range result.AllergenMatches {
		if strings.TrimSpace(match) == "" {
			continue
		}
		finding.AllergenMatches = append(finding.AllergenMatches, match)
	}

	advisory := defaultAdvisoryScore
	if result.OverallSafetyScore.OK {
		advisory = result.OverallSafetyScore.Value
	}

	common.LogInfo("安全分析完成",
		zap.Int("allergen_matches", len(finding.AllergenMatches)),
		zap.Int("warnings", len(finding.Warnings)),
	)

	return finding, advisory, content, nil
}

// filterWarnings 丟掉缺 ingredient 或缺 issue 的半成品警告。
// 模型偶爾會輸出不完整的條目，一筆壞記錄不能讓整個成功回應作廢。
func filterWarnings(warnings []Warning) []Warning {
	kept := make([]Warning, 0, len(warnings))
	for _, w := range warnings {
		if strings.TrimSpace(w.Ingredient) == "" || strings.TrimSpace(w.Issue) == "" {
			common.LogDebug("丟棄不完整的警告條目",
				zap.String("ingredient", w.Ingredient),
				zap.String("issue", w.Issue),
			)
			continue
		}
		kept = append(kept, w)
	}
	return kept
}
