package scan

import (
	"context"
	"fmt"
	"strings"

	"safescan/internal/core/ai/service"
	"safescan/internal/pkg/common"

	"go.uber.org/zap"
)

// InfoService 成分安全資訊服務
type InfoService struct {
	aiService *service.Service
}

// NewInfoService 創建新的成分安全資訊服務
func NewInfoService(aiService *service.Service) *InfoService {
	return &InfoService{
		aiService: aiService,
	}
}

// Annotate 為每個成分取得安全等級與簡短說明。
// 回傳標準化成分清單，以及清理後的原始 JSON（逐字保留給 UI 層重新解析）。
func (s *InfoService) Annotate(ctx context.Context, names []string) ([]Ingredient, string, error) {
	if len(names) == 0 {
		// 沒有成分就沒有東西可標註，這是合法的終態
		return nil, `{"ingredients":[]}`, nil
	}

	prompt := fmt.Sprintf(`Provide concise safety info for EACH ingredient below:

[%s]

RULES:
- Return EXACTLY one entry per ingredient.
- DO NOT mutate or rewrite ingredient names.
- DO NOT add or remove ingredients.
- safetyLevel values:
    0 = safe
    1 = caution
    2 = unsafe
- info MUST be short.

RETURN STRICT JSON ONLY:
{
  "ingredients": [
    { "name": "<ingredient>", "safetyLevel": 0, "info": "<short>" }
  ]
}`, common.StringSliceToString(names))

	content, err := s.aiService.ProcessPrompt(ctx, prompt)
	if err != nil {
		common.LogError("成分資訊請求失敗",
			zap.Error(err),
		)
		return nil, "", err
	}

	var result ingredientList
	if err := common.ParseJSON(content, &result); err != nil {
		common.LogError("成分資訊回應解析失敗",
			zap.Error(err),
		)
		return nil, "", fmt.Errorf("failed to parse ingredient info response: %w", err)
	}

	ingredients := make([]Ingredient, 0, len(result.Ingredients))
	for _, tok := range repairFragments(result.Ingredients) {
		if strings.TrimSpace(tok.Name) == "" {
			// 缺名稱的條目直接丟掉，一筆壞資料不該拖垮整個成功回應
			continue
		}
		ingredients = append(ingredients, tok.toIngredient())
	}

	common.LogInfo("成分資訊標註完成",
		zap.Int("requested", len(names)),
		zap.Int("annotated", len(ingredients)),
	)

	return ingredients, content, nil
}
