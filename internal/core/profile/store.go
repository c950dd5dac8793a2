package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"safescan/internal/core/scan"
	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Store Redis 後端的健康檔案存放。
// 健康檔案屬敏感資料，日誌層會過濾相關欄位（見 common.LogInfo）。
type Store struct {
	client *redis.Client
	config *config.HistoryConfig
}

// NewStore 創建健康檔案存放。與歷史記錄共用同一個 Redis 實例設定。
func NewStore(cfg *config.HistoryConfig) (*Store, error) {
	if !cfg.Enabled {
		return &Store{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		config: cfg,
	}, nil
}

func profileKey(uid string) string { return fmt.Sprintf("profile:%s", uid) }

// Snapshot 讀取使用者當下的健康檔案。管線啟動時讀一次，
// 掃描進行中檔案再變動也不影響這次分析。
func (s *Store) Snapshot(ctx context.Context, uid string) (scan.HealthProfile, error) {
	if !s.config.Enabled || s.client == nil {
		return scan.HealthProfile{}, common.ErrHistoryUnavailable
	}

	data, err := s.client.Get(ctx, profileKey(uid)).Bytes()
	if err == redis.Nil {
		return scan.HealthProfile{}, common.ErrProfileNotFound
	}
	if err != nil {
		return scan.HealthProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	var p scan.HealthProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return scan.HealthProfile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

// Update 覆寫使用者的健康檔案
func (s *Store) Update(ctx context.Context, uid string, p scan.HealthProfile) error {
	if !s.config.Enabled || s.client == nil {
		return common.ErrHistoryUnavailable
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := s.client.Set(ctx, profileKey(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
