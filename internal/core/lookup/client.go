package lookup

import (
	"context"
	"fmt"
	"net/http"

	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Result 條碼查詢結果，餵給掃描管線的輸入
type Result struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	IngredientsText string `json:"ingredients_text"`
}

// Client OpenFoodFacts 條碼查詢客戶端
type Client struct {
	client *resty.Client
}

// productEnvelope OpenFoodFacts v2 回應信封
type productEnvelope struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string `json:"product_name"`
		GenericName     string `json:"generic_name"`
		IngredientsText string `json:"ingredients_text"`
	} `json:"product"`
}

// NewClient 創建條碼查詢客戶端
func NewClient(cfg *config.LookupConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
	}
}

// Lookup 以條碼查詢商品。找不到名稱或描述時用預設文字補上，
// 讓管線永遠拿得到可用的輸入。
func (c *Client) Lookup(ctx context.Context, barcode string) (*Result, error) {
	var envelope productEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&envelope).
		Get(fmt.Sprintf("/api/v2/product/%s.json", barcode))

	if err != nil {
		common.LogError("條碼查詢請求失敗",
			zap.String("barcode", barcode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("barcode lookup failed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.ErrLookupNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("barcode lookup returned status %d", resp.StatusCode())
	}
	// status 0 是 OpenFoodFacts 的「查無此條碼」信封
	if envelope.Status == 0 {
		return nil, common.ErrLookupNotFound
	}

	name := envelope.Product.ProductName
	if name == "" {
		name = "Unknown Product"
	}
	description := envelope.Product.GenericName
	if description == "" {
		description = "No description"
	}

	common.LogInfo("條碼查詢完成",
		zap.String("barcode", barcode),
		zap.String("product", name),
	)

	return &Result{
		Name:            name,
		Description:     description,
		IngredientsText: envelope.Product.IngredientsText,
	}, nil
}
