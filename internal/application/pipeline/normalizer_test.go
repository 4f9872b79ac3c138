package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tendero-bot/internal/application/pipeline"
	"github.com/jhoicas/tendero-bot/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Normalize: limpieza determinista del texto crudo
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalize_MinusculasYAcentos(t *testing.T) {
	out, err := pipeline.Normalize("Vendí 2 Maggi")
	require.NoError(t, err)
	assert.Equal(t, "vendi 2 maggi", out, "debe plegar mayúsculas y acentos")
}

func TestNormalize_PuntuacionYEspacios(t *testing.T) {
	out, err := pipeline.Normalize("  vendi,   2   maggi!!  ")
	require.NoError(t, err)
	assert.Equal(t, "vendi 2 maggi", out, "puntuación a espacios y espacios colapsados")
}

func TestNormalize_PalabrasNumericas(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"vendi dos maggi", "vendi 2 maggi"},
		{"sold two maggi", "sold 2 maggi"},
		{"llego una docena de huevos", "llego 1 12 de huevos"},
		{"compre veinte panelas", "compre 20 panelas"},
	}
	for _, c := range cases {
		out, err := pipeline.Normalize(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, out, c.in)
	}
}

func TestNormalize_ConservaPrecioDecimal(t *testing.T) {
	out, err := pipeline.Normalize("vendi 2 maggi a $3.5")
	require.NoError(t, err)
	assert.Equal(t, "vendi 2 maggi a $3.5", out, "el '$' y el '.' decimal se conservan")
}

func TestNormalize_PuntoFinalDeFrase(t *testing.T) {
	out, err := pipeline.Normalize("vendi 3.")
	require.NoError(t, err)
	assert.Equal(t, "vendi 3", out, "un punto de cierre no convierte 3 en decimal")
}

func TestNormalize_EntradaVacia(t *testing.T) {
	_, err := pipeline.Normalize("   ")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	_, err = pipeline.Normalize("!!! ... ")
	assert.ErrorIs(t, err, domain.ErrMalformedInput, "solo puntuación equivale a vacío")
}

func TestNormalize_Determinista(t *testing.T) {
	a, err := pipeline.Normalize("Vendí DOS Maggi!!")
	require.NoError(t, err)
	b, err := pipeline.Normalize("Vendí DOS Maggi!!")
	require.NoError(t, err)
	assert.Equal(t, a, b, "el mismo input siempre produce el mismo output")
}

// ──────────────────────────────────────────────────────────────────────────────
// CanonicalKey
// ──────────────────────────────────────────────────────────────────────────────

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "jabon rey", pipeline.CanonicalKey("Jabón   Rey"))
	assert.Equal(t, "", pipeline.CanonicalKey("  "), "nombre vacío produce clave vacía")
}
