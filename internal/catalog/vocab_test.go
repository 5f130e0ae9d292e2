package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabularyMembership(t *testing.T) {
	v := Default().Vocabulary()

	assert.True(t, v.IsSimple("生命力＋１"))
	assert.True(t, v.IsPositive("生命力＋１"), "simple effects are positive")
	assert.True(t, v.IsPositive("强韧度＋５"))
	assert.False(t, v.IsSimple("强韧度＋５"), "dual-exclusive effect listed as simple")
	assert.True(t, v.IsNegative("降低生命力"))
	assert.False(t, v.IsPositive("降低生命力"))
	assert.True(t, v.Known("降低生命力"))
	assert.False(t, v.Known("不存在的效果"))

	assert.NotEmpty(t, v.Names(SimpleEffects))
	assert.Greater(t, len(v.Names(PositiveEffects)), len(v.Names(SimpleEffects)))
}

func TestVocabularyDropsRepeats(t *testing.T) {
	v := NewVocabulary([]string{"a", "a", " b "}, []string{"b", "c"}, []string{"n", "n"})
	assert.Equal(t, []string{"a", "b"}, v.Names(SimpleEffects))
	assert.Equal(t, []string{"a", "b", "c"}, v.Names(PositiveEffects))
	assert.Equal(t, []string{"n"}, v.Names(NegativeEffects))
}

func TestCanonical(t *testing.T) {
	v := NewVocabulary(
		[]string{"生命力＋１", "触发“魔法之境”时提升攻击力"},
		nil,
		[]string{"受到损伤时，会累积中毒量表"},
	)
	tests := []struct {
		in, want string
	}{
		{"生命力＋１", "生命力＋１"},
		{"生命力+1", "生命力＋１"},
		{" 生命力 +1 ", "生命力＋１"},
		{`触发"魔法之境"时提升攻击力`, "触发“魔法之境”时提升攻击力"},
		{"受到损伤时,会累积中毒量表", "受到损伤时，会累积中毒量表"},
		{" unknown ", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestSuggest(t *testing.T) {
	v := NewVocabulary([]string{"提升攻击力", "攻击力＋１", "攻击力＋２", "生命力＋１"}, []string{"攻击力＋４"}, []string{"降低攻击力"})

	got := v.Suggest("攻击力", PositiveEffects, 0)
	assert.Equal(t, []string{"攻击力＋１", "攻击力＋２", "攻击力＋４", "提升攻击力"}, got)

	assert.Equal(t, []string{"攻击力＋１"}, v.Suggest("攻击力+1", SimpleEffects, 0))
	assert.Len(t, v.Suggest("攻击力", PositiveEffects, 2), 2)
	assert.Equal(t, []string{"降低攻击力"}, v.Suggest("攻击", NegativeEffects, 5))
	assert.Empty(t, v.Suggest("防御", NegativeEffects, 5))
}

func TestParseEffectKind(t *testing.T) {
	k, ok := ParseEffectKind("Negative")
	assert.True(t, ok)
	assert.Equal(t, NegativeEffects, k)

	k, ok = ParseEffectKind("")
	assert.True(t, ok)
	assert.Equal(t, PositiveEffects, k)

	_, ok = ParseEffectKind("sideways")
	assert.False(t, ok)
}
