package service

import (
	"context"
	"strings"

	"safescan/internal/core/ai/cache"
	"safescan/internal/infrastructure/config"
)

// Completer 底層推論客戶端介面，測試時可以替換成 stub
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service AI 服務：在推論客戶端外面加一層快取。
// 重試由客戶端自己負責，這裡不做節流，上游端點的速率限制交給 HTTP middleware。
type Service struct {
	config       *config.Config
	client       Completer
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, client Completer, cacheManager *cache.CacheManager) *Service {
	return &Service{
		config:       cfg,
		client:       client,
		cacheManager: cacheManager,
	}
}

// ProcessPrompt 統一對外方法。回傳值是清理後、保證可解析成 JSON 物件的字串。
func (s *Service) ProcessPrompt(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)

	// 檢查緩存
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, prompt); err == nil && val != "" {
			return val, nil
		}
	}

	content, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, prompt, content)
	}

	return content, nil
}
