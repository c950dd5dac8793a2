package profile

import (
	"errors"
	"net/http"

	"safescan/internal/core/profile"
	"safescan/internal/core/scan"
	"safescan/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 健康檔案處理程序
type Handler struct {
	store *profile.Store
}

// NewHandler 創建新的健康檔案處理程序
func NewHandler(store *profile.Store) *Handler {
	return &Handler{store: store}
}

// HandleGetProfile 讀取使用者健康檔案
func (h *Handler) HandleGetProfile(c *gin.Context) {
	uid := c.Param("uid")

	p, err := h.store.Snapshot(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, common.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Profile not found",
				"code":  common.ErrCodeNotFound,
			})
			return
		}
		if errors.Is(err, common.ErrHistoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Profile storage is not available",
				"code":  common.ErrCodeServiceUnavailable,
			})
			return
		}
		common.LogError("健康檔案讀取失敗",
			zap.Error(err),
			zap.String("uid", uid),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// HandleUpdateProfile 覆寫使用者健康檔案
func (h *Handler) HandleUpdateProfile(c *gin.Context) {
	uid := c.Param("uid")

	var p scan.HealthProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.store.Update(c.Request.Context(), uid, p); err != nil {
		if errors.Is(err, common.ErrHistoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Profile storage is not available",
				"code":  common.ErrCodeServiceUnavailable,
			})
			return
		}
		common.LogError("健康檔案寫入失敗",
			zap.Error(err),
			zap.String("uid", uid),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
