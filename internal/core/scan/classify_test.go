package scan

import (
	"context"
	"errors"
	"testing"

	"safescan/internal/core/ai/service"
	"safescan/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
)

func newClassifyService(stub *stubCompleter) *ClassifyService {
	return NewClassifyService(service.NewService(&config.Config{}, stub, nil))
}

func TestClassifyMapsCategory(t *testing.T) {
	svc := newClassifyService(&stubCompleter{
		classifyResp: `{"category":"Cosmetic Item"}`,
	})
	assert.Equal(t, CategoryCosmetic, svc.Classify(context.Background(), "Dettol Handwash", "antiseptic liquid"))
}

func TestClassifyUnrecognizedCategoryFallsBack(t *testing.T) {
	svc := newClassifyService(&stubCompleter{
		classifyResp: `{"category":"Garden Furniture"}`,
	})
	assert.Equal(t, CategoryUnknown, svc.Classify(context.Background(), "Deck Chair", ""))
}

func TestClassifyMissingCategoryKeyFallsBack(t *testing.T) {
	svc := newClassifyService(&stubCompleter{
		classifyResp: `{"result":"Food Product"}`,
	})
	assert.Equal(t, CategoryUnknown, svc.Classify(context.Background(), "Cereal", ""))
}

func TestClassifyInferenceErrorFallsBack(t *testing.T) {
	// 分類失敗永遠不是致命錯誤，一律降級成 Unknown
	svc := newClassifyService(&stubCompleter{
		classifyErr: errors.New("inference retries exhausted after 3 attempts: boom"),
	})
	assert.Equal(t, CategoryUnknown, svc.Classify(context.Background(), "Shampoo", ""))
}

func TestClassifyMalformedJSONFallsBack(t *testing.T) {
	svc := newClassifyService(&stubCompleter{
		classifyResp: `not json at all`,
	})
	assert.Equal(t, CategoryUnknown, svc.Classify(context.Background(), "Shampoo", ""))
}
