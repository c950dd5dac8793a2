package scan

import (
	"errors"
	"net/http"

	"safescan/internal/core/history"
	"safescan/internal/core/profile"
	coreScan "safescan/internal/core/scan"
	"safescan/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScanRequest 掃描商品請求。
// Profile 內嵌時直接使用，否則用 UID 去讀存放的健康檔案；
// 兩者都沒有就以空檔案分析。
type ScanRequest struct {
	ProductName    string                 `json:"product_name" binding:"required"` // 商品名稱
	Description    string                 `json:"description,omitempty"`           // 商品描述
	IngredientText string                 `json:"ingredient_text,omitempty"`       // 包裝上的成分文字（可省略）
	UID            string                 `json:"uid,omitempty"`                   // 使用者 ID（用於讀檔案與寫歷史）
	Profile        *coreScan.HealthProfile `json:"profile,omitempty"`              // 內嵌健康檔案
}

// ScanResponse 掃描結果響應
type ScanResponse struct {
	ProductID string                `json:"product_id"`
	Result    *coreScan.SafetyResult `json:"result"`
	ScoreBand string                `json:"score_band"`
}

// Handler 掃描處理程序
type Handler struct {
	pipeline     *coreScan.Pipeline
	profileStore *profile.Store
	historyStore *history.Store
}

// NewHandler 創建新的掃描處理程序
func NewHandler(pipeline *coreScan.Pipeline, profileStore *profile.Store, historyStore *history.Store) *Handler {
	return &Handler{
		pipeline:     pipeline,
		profileStore: profileStore,
		historyStore: historyStore,
	}
}

// HandleScan 執行一次完整的商品安全掃描
func (h *Handler) HandleScan(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	common.LogInfo("開始處理掃描請求",
		zap.String("request_id", requestID),
		zap.String("product", req.ProductName),
		zap.String("client_ip", c.ClientIP()),
	)

	// 取得健康檔案快照。掃描途中檔案變動不影響這次分析。
	healthProfile := h.resolveProfile(c, req, requestID)

	result, err := h.pipeline.Run(c.Request.Context(), coreScan.Request{
		ProductName:       req.ProductName,
		Description:       req.Description,
		RawIngredientText: req.IngredientText,
	}, healthProfile)
	if err != nil {
		var pipeErr *coreScan.PipelineError
		if errors.As(err, &pipeErr) {
			common.LogError("掃描管線中止",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("stage", string(pipeErr.Stage)),
			)
		} else {
			common.LogError("掃描失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Scan failed",
			"code":  common.ErrCodeServiceUnavailable,
		})
		return
	}

	productID := common.GenerateUUID()

	// 只有成功完成的掃描才寫入歷史，中止的掃描不留任何記錄。
	// 歷史寫入失敗不影響回傳結果。
	if req.UID != "" && h.historyStore != nil {
		record := history.Record{
			ProductID:          productID,
			Name:               result.ProductName,
			Category:           string(result.Category),
			SafetyScore:        result.Score,
			IngredientInfoJSON: result.IngredientsRawJSON,
			SafetyJSON:         result.SafetyRawJSON,
		}
		if err := h.historyStore.AddHistory(c.Request.Context(), req.UID, record); err != nil {
			common.LogWarn("歷史記錄寫入失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		}
	}

	common.LogInfo("掃描完成",
		zap.String("request_id", requestID),
		zap.String("product", result.ProductName),
		zap.String("category", string(result.Category)),
		zap.Int("safety_score", result.Score),
		zap.Int("ingredients_count", len(result.Ingredients)),
	)

	c.JSON(http.StatusOK, ScanResponse{
		ProductID: productID,
		Result:    result,
		ScoreBand: coreScan.ScoreBand(result.Score),
	})
}

// resolveProfile 決定這次掃描用的健康檔案：內嵌優先，其次 UID 查存放，
// 查不到就用空檔案繼續，不讓掃描失敗。
func (h *Handler) resolveProfile(c *gin.Context, req ScanRequest, requestID string) coreScan.HealthProfile {
	if req.Profile != nil {
		return *req.Profile
	}
	if req.UID == "" || h.profileStore == nil {
		return coreScan.HealthProfile{}
	}

	p, err := h.profileStore.Snapshot(c.Request.Context(), req.UID)
	if err != nil {
		if !errors.Is(err, common.ErrProfileNotFound) && !errors.Is(err, common.ErrHistoryUnavailable) {
			common.LogWarn("健康檔案讀取失敗，以空檔案繼續",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		}
		return coreScan.HealthProfile{}
	}
	return p
}
