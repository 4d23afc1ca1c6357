package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseComboLevel(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{
			name:  "single level",
			token: "Эксперт",
			want:  []string{"Эксперт"},
		},
		{
			name:  "uppercase concatenation",
			token: "ЭКСПЕРТОПТИМАЛЬНЫЙМИНИМАЛЬНЫЙ",
			want:  []string{"Оптимальный", "Минимальный", "Эксперт"},
		},
		{
			name:  "pair with separator noise",
			token: "Эксперт / Минимальный",
			want:  []string{"Минимальный", "Эксперт"},
		},
		{
			name:  "longer name wins over its prefix",
			token: "ОптимальныйПлюс",
			want:  []string{"Оптимальный Плюс"},
		},
		{
			name:  "plus variant combined with base",
			token: "ОПТИМАЛЬНЫЙ ПЛЮСБАЗОВЫЙ",
			want:  []string{"Оптимальный Плюс", "Базовый"},
		},
		{
			name:  "unknown token stays literal",
			token: "Корпоративный",
			want:  []string{"Корпоративный"},
		},
		{
			name:  "partial match falls back to literal",
			token: "ЭкспертX",
			want:  []string{"ЭкспертX"},
		},
		{
			name:  "duplicate level not consumed twice",
			token: "ЭкспертЭксперт",
			want:  []string{"ЭкспертЭксперт"},
		},
		{
			name:  "empty token stays literal",
			token: "",
			want:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseComboLevel(tt.token))
		})
	}
}

func TestParseComboLevelRoundTrip(t *testing.T) {
	// Any separator-free concatenation of known names in vocabulary order
	// must recover exactly that set.
	token := "ЭкспертОптимальныйОптимальный ПлюсМинимальныйБазовый"
	got := ParseComboLevel(token)
	assert.ElementsMatch(t,
		[]string{"Эксперт", "Оптимальный", "Оптимальный Плюс", "Минимальный", "Базовый"},
		got,
	)
}
