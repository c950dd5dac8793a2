package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Record 一筆掃描記錄（歷史或收藏共用同一形狀）。
// 兩個原始 JSON 欄位逐字保存，之後重新顯示時直接交回 UI 層解析。
type Record struct {
	ProductID          string    `json:"product_id"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	SafetyScore        int       `json:"safety_score"`
	IngredientInfoJSON string    `json:"ingredient_info_json"`
	SafetyJSON         string    `json:"safety_json"`
	CreatedAt          time.Time `json:"created_at"`
}

// Store Redis 後端的歷史記錄與收藏存放。
// 每個使用者一個 hash，欄位是 product id，值是 Record 的 JSON。
type Store struct {
	client *redis.Client
	config *config.HistoryConfig
}

// NewStore 創建歷史記錄存放，啟動時測試連線
func NewStore(cfg *config.HistoryConfig) (*Store, error) {
	if !cfg.Enabled {
		return &Store{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		config: cfg,
	}, nil
}

func historyKey(uid string) string   { return fmt.Sprintf("history:%s", uid) }
func favoritesKey(uid string) string { return fmt.Sprintf("favorites:%s", uid) }

// AddHistory 寫入一筆掃描歷史。只有管線成功完成後才會被呼叫，
// 中止或取消的掃描不留任何記錄。
func (s *Store) AddHistory(ctx context.Context, uid string, record Record) error {
	return s.put(ctx, historyKey(uid), record)
}

// ListHistory 列出使用者的掃描歷史，新的在前
func (s *Store) ListHistory(ctx context.Context, uid string) ([]Record, error) {
	return s.list(ctx, historyKey(uid))
}

// AddFavorite 加入收藏
func (s *Store) AddFavorite(ctx context.Context, uid string, record Record) error {
	return s.put(ctx, favoritesKey(uid), record)
}

// RemoveFavorite 移除收藏
func (s *Store) RemoveFavorite(ctx context.Context, uid, productID string) error {
	if !s.config.Enabled || s.client == nil {
		return common.ErrHistoryUnavailable
	}
	if err := s.client.HDel(ctx, favoritesKey(uid), productID).Err(); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// IsFavorite 檢查商品是否已收藏
func (s *Store) IsFavorite(ctx context.Context, uid, productID string) (bool, error) {
	if !s.config.Enabled || s.client == nil {
		return false, common.ErrHistoryUnavailable
	}
	exists, err := s.client.HExists(ctx, favoritesKey(uid), productID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// ListFavorites 列出使用者的收藏
func (s *Store) ListFavorites(ctx context.Context, uid string) ([]Record, error) {
	return s.list(ctx, favoritesKey(uid))
}

func (s *Store) put(ctx context.Context, key string, record Record) error {
	if !s.config.Enabled || s.client == nil {
		return common.ErrHistoryUnavailable
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.client.HSet(ctx, key, record.ProductID, data).Err(); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	if s.config.TTL > 0 {
		_ = s.client.Expire(ctx, key, s.config.TTL).Err()
	}

	common.LogDebug("記錄已儲存",
		zap.String("key", key),
		zap.String("product_id", record.ProductID),
	)
	return nil
}

func (s *Store) list(ctx context.Context, key string) ([]Record, error) {
	if !s.config.Enabled || s.client == nil {
		return nil, common.ErrHistoryUnavailable
	}

	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, data := range raw {
		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			// 一筆壞記錄不該讓整個列表失敗
			common.LogWarn("略過無法解析的記錄",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		records = append(records, record)
	}

	// 新的在前
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// Close 關閉 Redis 連線
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
