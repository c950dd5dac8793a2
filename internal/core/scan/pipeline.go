package scan

import (
	"context"
	"fmt"
	"strings"

	"safescan/internal/pkg/common"

	"go.uber.org/zap"
)

// Stage 管線階段
type Stage string

const (
	StageExtraction     Stage = "extraction"
	StageClassification Stage = "classification"
	StageAnalysis       Stage = "analysis"
	StageScoring        Stage = "scoring"
)

// State 管線狀態
type State int

const (
	StateIdle State = iota
	StateExtractingIngredients
	StateClassifyingCategory
	StateAnalyzingSafety
	StateScoring
	StateCompleted
	StateFailed
)

// String 實現 fmt.Stringer 介面
func (s State) String() string {
	switch s {
	case StateExtractingIngredients:
		return "extracting_ingredients"
	case StateClassifyingCategory:
		return "classifying_category"
	case StateAnalyzingSafety:
		return "analyzing_safety"
	case StateScoring:
		return "scoring"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// PipelineError 帶階段標記的管線失敗。
// 只有 extraction 與 analysis 兩個致命階段會產生它，分類失敗只會降級。
type PipelineError struct {
	Stage Stage
	Err   error
}

// Error 實現 error 介面
func (e *PipelineError) Error() string {
	return fmt.Sprintf("scan pipeline failed at %s: %v", e.Stage, e.Err)
}

// Unwrap 保留原始錯誤
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Request 一次商品掃描的輸入。
// RawIngredientText 為空表示沒有現成的成分文字，要先用商品名稱推論成分。
type Request struct {
	ProductName       string
	Description       string
	RawIngredientText string
}

// Pipeline 掃描管線。所有依賴由外部注入，沒有全局狀態；
// 健康檔案快照逐次傳入，跟同時進行的其他掃描互不干擾。
type Pipeline struct {
	extract  *ExtractService
	classify *ClassifyService
	info     *InfoService
	safety   *SafetyService
}

// NewPipeline 創建掃描管線
func NewPipeline(extract *ExtractService, classify *ClassifyService, info *InfoService, safety *SafetyService) *Pipeline {
	return &Pipeline{
		extract:  extract,
		classify: classify,
		info:     info,
		safety:   safety,
	}
}

// Run 執行一次完整掃描：成分提取 -> 分類 -> 安全分析 -> 本地計分。
//
// 狀態走向 Idle -> ExtractingIngredients -> ClassifyingCategory ->
// AnalyzingSafety -> Scoring -> Completed；extraction 或 analysis 失敗
// 會以 PipelineError 終止，且不產生部分結果。分類與提取之間沒有資料
// 依賴，兩者並行發出，分類失敗只把類別降級成 Unknown，管線照常繼續。
//
// 重試完全由推論客戶端負責，這裡把每個階段的最終結果當成二元看待。
func (p *Pipeline) Run(ctx context.Context, req Request, profile HealthProfile) (*SafetyResult, error) {
	state := StateIdle

	// 分類跟提取並行，結果在組裝前收回
	categoryCh := make(chan Category, 1)
	go func() {
		categoryCh <- p.classify.Classify(ctx, req.ProductName, req.Description)
	}()

	// 有原始成分文字就直接當提取種子，沒有就用商品名稱推論
	seed := strings.TrimSpace(req.RawIngredientText)
	if seed == "" {
		seed = req.ProductName
	}

	state = StateExtractingIngredients
	common.LogDebug("管線狀態轉移", zap.String("state", state.String()))

	names, err := p.extract.Extract(ctx, seed)
	if err != nil {
		common.LogError("管線於成分提取階段失敗",
			zap.String("product", req.ProductName),
			zap.Error(err),
		)
		return nil, &PipelineError{Stage: StageExtraction, Err: err}
	}

	state = StateAnalyzingSafety
	common.LogDebug("管線狀態轉移", zap.String("state", state.String()))

	// 成分資訊與安全分析同屬分析階段，任何一邊失敗都是致命的：
	// 安全結論是整個產品的核心，不能悄悄跳過
	ingredients, ingredientInfoJSON, err := p.info.Annotate(ctx, names)
	if err != nil {
		return nil, &PipelineError{Stage: StageAnalysis, Err: err}
	}

	var (
		finding       SafetyFinding
		advisory      = defaultAdvisoryScore
		safetyRawJSON = "{}"
	)
	if len(names) > 0 {
		finding, advisory, safetyRawJSON, err = p.safety.Analyze(ctx, names, profile)
		if err != nil {
			return nil, &PipelineError{Stage: StageAnalysis, Err: err}
		}
	} else {
		// 空成分清單是合法終態：沒有成分就沒有可做的安全分析
		common.LogInfo("成分清單為空，跳過安全分析",
			zap.String("product", req.ProductName),
		)
	}

	state = StateScoring
	common.LogDebug("管線狀態轉移", zap.String("state", state.String()))

	// 本地計分永遠是最終分數，LLM 自帶的 overallSafetyScore 只當顯示備援
	score := ComputeScore(ingredients, profile)

	category := <-categoryCh

	state = StateCompleted
	common.LogInfo("掃描管線完成",
		zap.String("product", req.ProductName),
		zap.String("category", string(category)),
		zap.Int("score", score),
		zap.Int("ingredients", len(ingredients)),
		zap.String("state", state.String()),
	)

	return &SafetyResult{
		ProductName:        req.ProductName,
		Category:           category,
		Score:              score,
		AdvisoryScore:      advisory,
		Ingredients:        ingredients,
		Findings:           finding,
		IngredientsRawJSON: ingredientInfoJSON,
		SafetyRawJSON:      safetyRawJSON,
	}, nil
}
