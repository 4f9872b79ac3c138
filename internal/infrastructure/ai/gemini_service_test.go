package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		in   string
		want entity.Intent
	}{
		{"SALE", entity.IntentSale},
		{"sale", entity.IntentSale},
		{"  RESTOCK ", entity.IntentRestock},
		{"EXPENSE", entity.IntentExpense},
		{"QUERY", entity.IntentQuery},
		{"UNKNOWN", entity.IntentUnknown},
		{"cualquier cosa", entity.IntentUnknown},
		{"", entity.IntentUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseIntent(c.in), "parseIntent(%q)", c.in)
	}
}

// El texto del usuario incluye el inventario ordenado: la misma llamada con el
// mismo estado produce el mismo prompt.
func TestBuildUserText_Determinista(t *testing.T) {
	nluCtx := ports.NLUContext{
		KnownItems:    map[string]string{"panela": "Panela", "maggi": "Maggi", "arroz 1kg": "Arroz 1kg"},
		RecentHistory: []string{"SALE maggi -2"},
	}

	got := buildUserText("vendi 2 maggi", nluCtx)

	assert.Equal(t, "Mensaje: vendi 2 maggi\nInventario conocido: Arroz 1kg, Maggi, Panela\nMovimientos recientes: SALE maggi -2", got)
}

func TestBuildUserText_SinContexto(t *testing.T) {
	got := buildUserText("hola", ports.NLUContext{})
	assert.Equal(t, "Mensaje: hola", got)
}

// Sin API key el adaptador degrada a indisponible en vez de llamar a la red.
func TestClassifyAndExtract_SinAPIKey(t *testing.T) {
	svc := NewGeminiService("", "gemini-1.5-flash")

	_, err := svc.ClassifyAndExtract(context.Background(), "vendi 2 maggi", ports.NLUContext{})

	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}
