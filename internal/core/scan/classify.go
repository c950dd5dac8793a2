package scan

import (
	"context"
	"fmt"

	"safescan/internal/core/ai/service"
	"safescan/internal/pkg/common"

	"go.uber.org/zap"
)

// ClassifyService 商品分類服務
type ClassifyService struct {
	aiService *service.Service
}

// NewClassifyService 創建新的商品分類服務
func NewClassifyService(aiService *service.Service) *ClassifyService {
	return &ClassifyService{
		aiService: aiService,
	}
}

// Classify 把商品名稱與描述分類到固定分類。
// 分類失敗不是致命錯誤，任何解析問題一律降級成 Unknown，永遠不回傳 error。
func (s *ClassifyService) Classify(ctx context.Context, name, description string) Category {
	prompt := fmt.Sprintf(`You MUST classify this product into EXACTLY ONE of the following categories:

- "Food Product"
- "Cosmetic Item"
- "Medication"
- "Unknown"

PRODUCT NAME: "%s"
PRODUCT DESCRIPTION: "%s"

HARD RULES:
- If it contains "soap", "body wash", "shampoo", "handwash", "detergent", "cleanser",
  "face wash", "lotion", "cream", "moisturizer", "shaving", "deodorant",
  "dettol", "savlon", "olay", "nivea", "ponds"
  -> ALWAYS "Cosmetic Item".

- If it contains "antiseptic", "disinfectant"
  -> ALWAYS "Cosmetic Item".

- If it treats a medical condition (tablet, capsule, syrup, antibiotic, ointment)
  -> ALWAYS "Medication".

- If it is edible or drinkable (any food, beverage, supplement, candy)
  -> ALWAYS "Food Product".

- NEVER classify non-edible items as food.
- If it is clearly none of the three (furniture, electronics, tools),
  return "Unknown".

YOU MUST RETURN VALID JSON ONLY:
{
    "category": "<Food Product | Cosmetic Item | Medication | Unknown>"
}`, name, description)

	content, err := s.aiService.ProcessPrompt(ctx, prompt)
	if err != nil {
		common.LogWarn("分類請求失敗，降級為 Unknown",
			zap.Error(err),
		)
		return CategoryUnknown
	}

	var result struct {
		Category string `json:"category"`
	}
	if err := common.ParseJSON(content, &result); err != nil {
		common.LogWarn("分類回應解析失敗，降級為 Unknown",
			zap.Error(err),
		)
		return CategoryUnknown
	}

	category := NormalizeCategory(result.Category)
	common.LogInfo("商品分類完成",
		zap.String("category", string(category)),
	)

	return category
}
