package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairFragmentsMergesSplitEntry(t *testing.T) {
	tokens := []rawToken{
		{Name: "Water"},
		{Name: "CAFFEINE(8", Info: "stimulant"},
		{Name: "3 mg/100 g)"},
		{Name: "Sugar"},
	}

	repaired := repairFragments(tokens)
	require.Len(t, repaired, 3)
	assert.Equal(t, "Water", repaired[0].Name)
	assert.Equal(t, "CAFFEINE(8 3 mg/100 g)", repaired[1].Name)
	// info/safetyLevel 沿用開頭碎片的值
	assert.Equal(t, "stimulant", repaired[1].Info)
	assert.Equal(t, "Sugar", repaired[2].Name)
}

func TestRepairFragmentsNoFragments(t *testing.T) {
	tokens := []rawToken{
		{Name: "Water"},
		{Name: "Vitamin C (ascorbic acid)"}, // 括號配對完整，不是碎片
		{Name: "Salt"},
	}

	repaired := repairFragments(tokens)
	require.Len(t, repaired, 3)
	assert.Equal(t, tokens, repaired)
}

func TestRepairFragmentsUnclosedFragmentKept(t *testing.T) {
	// 掃到結尾都沒等到收尾碎片，開頭碎片原樣保留而不是丟棄
	tokens := []rawToken{
		{Name: "Sodium Benzoate(E211"},
	}

	repaired := repairFragments(tokens)
	require.Len(t, repaired, 1)
	assert.Equal(t, "Sodium Benzoate(E211", repaired[0].Name)
}

func TestRepairFragmentsSecondOpenerOverwritesBuffer(t *testing.T) {
	// 已知限制：一次只暫存一筆開頭碎片，第二筆會覆蓋第一筆，
	// 收尾碎片接到後來的那筆上
	tokens := []rawToken{
		{Name: "CAFFEINE(8"},
		{Name: "TAURINE(400"},
		{Name: "mg)"},
	}

	repaired := repairFragments(tokens)
	require.Len(t, repaired, 1)
	assert.Equal(t, "TAURINE(400 mg)", repaired[0].Name)
}

func TestRepairFragmentsEmptyInput(t *testing.T) {
	assert.Empty(t, repairFragments(nil))
	assert.Empty(t, repairFragments([]rawToken{}))
}
