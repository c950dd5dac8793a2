package lookup

import (
	"errors"
	"net/http"
	"strings"

	"safescan/internal/core/lookup"
	"safescan/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler 條碼查詢處理程序
type Handler struct {
	client *lookup.Client
}

// NewHandler 創建新的條碼查詢處理程序
func NewHandler(client *lookup.Client) *Handler {
	return &Handler{client: client}
}

// HandleLookup 用條碼查詢商品基本資料
func (h *Handler) HandleLookup(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barcode is required"})
		return
	}

	result, err := h.client.Lookup(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, common.ErrLookupNotFound) {
			common.LogInfo("條碼查無商品",
				zap.String("request_id", requestID),
				zap.String("barcode", barcode),
			)
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
				"code":  "PRODUCT_NOT_FOUND",
			})
			return
		}
		common.LogError("條碼查詢失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("barcode", barcode),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product lookup failed"})
		return
	}

	common.LogInfo("條碼查詢完成",
		zap.String("request_id", requestID),
		zap.String("barcode", barcode),
		zap.String("product", result.Name),
	)

	c.JSON(http.StatusOK, result)
}
