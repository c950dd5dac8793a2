package record

import (
	"errors"
	"net/http"

	"safescan/internal/core/history"
	"safescan/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 歷史記錄與收藏處理程序
type Handler struct {
	store *history.Store
}

// NewHandler 創建新的記錄處理程序
func NewHandler(store *history.Store) *Handler {
	return &Handler{store: store}
}

// FavoriteRequest 加入收藏請求
type FavoriteRequest struct {
	ProductID          string `json:"product_id" binding:"required"`
	Name               string `json:"name" binding:"required"`
	Category           string `json:"category,omitempty"`
	SafetyScore        int    `json:"safety_score,omitempty"`
	IngredientInfoJSON string `json:"ingredient_info_json,omitempty"`
	SafetyJSON         string `json:"safety_json,omitempty"`
}

// HandleListHistory 列出使用者的掃描歷史
func (h *Handler) HandleListHistory(c *gin.Context) {
	uid := c.Param("uid")
	records, err := h.store.ListHistory(c.Request.Context(), uid)
	if err != nil {
		h.writeStoreError(c, err, "歷史記錄查詢失敗", uid)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// HandleListFavorites 列出使用者的收藏
func (h *Handler) HandleListFavorites(c *gin.Context) {
	uid := c.Param("uid")
	records, err := h.store.ListFavorites(c.Request.Context(), uid)
	if err != nil {
		h.writeStoreError(c, err, "收藏查詢失敗", uid)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": records})
}

// HandleAddFavorite 加入收藏
func (h *Handler) HandleAddFavorite(c *gin.Context) {
	uid := c.Param("uid")

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	record := history.Record{
		ProductID:          req.ProductID,
		Name:               req.Name,
		Category:           req.Category,
		SafetyScore:        req.SafetyScore,
		IngredientInfoJSON: req.IngredientInfoJSON,
		SafetyJSON:         req.SafetyJSON,
	}
	if err := h.store.AddFavorite(c.Request.Context(), uid, record); err != nil {
		h.writeStoreError(c, err, "收藏寫入失敗", uid)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleRemoveFavorite 移除收藏
func (h *Handler) HandleRemoveFavorite(c *gin.Context) {
	uid := c.Param("uid")
	productID := c.Param("product_id")

	if err := h.store.RemoveFavorite(c.Request.Context(), uid, productID); err != nil {
		h.writeStoreError(c, err, "收藏移除失敗", uid)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleCheckFavorite 檢查商品是否已收藏
func (h *Handler) HandleCheckFavorite(c *gin.Context) {
	uid := c.Param("uid")
	productID := c.Param("product_id")

	exists, err := h.store.IsFavorite(c.Request.Context(), uid, productID)
	if err != nil {
		h.writeStoreError(c, err, "收藏查詢失敗", uid)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": exists})
}

func (h *Handler) writeStoreError(c *gin.Context, err error, msg, uid string) {
	if errors.Is(err, common.ErrHistoryUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "History storage is not available",
			"code":  common.ErrCodeServiceUnavailable,
		})
		return
	}
	common.LogError(msg,
		zap.Error(err),
		zap.String("uid", uid),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
}
