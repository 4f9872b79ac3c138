package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/application/pipeline"
	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo completo: normalizar → clasificar → extraer → reconciliar → responder,
// con oráculo de prueba e infraestructura en memoria.
// ──────────────────────────────────────────────────────────────────────────────

type pipelineFixture struct {
	pipe     *pipeline.Pipeline
	backend  *memBackend
	idem     *memIdempotency
	notifier *spyNotifier
	oracle   *stubOracle
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	backend := newMemBackend()
	idem := newMemIdempotency()
	notifier := &spyNotifier{}
	oracle := &stubOracle{}
	log := testLogger()
	m := testMetrics()

	classifier := pipeline.NewIntentClassifier(oracle, 0.6, time.Second, log, m)
	extractor := pipeline.NewEntityExtractor(oracle, 0.5, time.Second, log)
	reconciler := appledger.NewReconciler(backend, 5, log)

	pipe := pipeline.New(pipeline.Deps{
		Classifier:   classifier,
		Extractor:    extractor,
		Reconciler:   reconciler,
		Items:        backend,
		Entries:      backend,
		Idempotency:  idem,
		Notifier:     notifier,
		HistoryDepth: 10,
		Log:          log,
		Metrics:      m,
	})

	return &pipelineFixture{pipe: pipe, backend: backend, idem: idem, notifier: notifier, oracle: oracle}
}

func message(id, text string) entity.Utterance {
	return entity.Utterance{
		MessageID:  id,
		From:       "whatsapp:+573001112233",
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

func TestProcessMessage_VentaEnEspanol(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 10, LowStockThreshold: 5})

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM100", "Vendí 2 Maggi"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeApplied, out.Kind)
	assert.Equal(t, "Venta registrada: 2 x Maggi. Quedan 8.", out.Reply)
	assert.EqualValues(t, 8, f.backend.quantity("maggi"))
	assert.Zero(t, f.oracle.calls, "una venta con palabras clave no consulta el oráculo")
}

func TestProcessMessage_VentaEnIngles(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 10, LowStockThreshold: 5})

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM101", "sold 2 maggi"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeApplied, out.Kind)
	assert.EqualValues(t, 8, f.backend.quantity("maggi"))
}

func TestProcessMessage_ReposicionCreaItem(t *testing.T) {
	f := newPipelineFixture(t)

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM102", "compre 10 gaseosa"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeApplied, out.Kind)
	assert.Equal(t, "Producto nuevo: gaseosa con 10 unidades.", out.Reply)
	assert.EqualValues(t, 10, f.backend.quantity("gaseosa"))
}

func TestProcessMessage_StockInsuficiente(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 1, LowStockThreshold: 5})

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM103", "vendi 3 maggi"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeRejected, out.Kind)
	assert.Equal(t, "Stock insuficiente: de Maggi quedan 1. No registré la venta.", out.Reply)
	assert.EqualValues(t, 1, f.backend.quantity("maggi"), "el rechazo no cambia el estado")
	assert.Zero(t, f.backend.entryCount())
}

func TestProcessMessage_ConsultaDeStock(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "arroz 1kg", Name: "Arroz 1kg", Quantity: 7, LowStockThreshold: 5})

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM104", "cuanto queda de arroz 1kg"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeQuery, out.Kind)
	assert.Equal(t, "Arroz 1kg: quedan 7.", out.Reply)
	assert.Zero(t, f.backend.entryCount(), "una consulta no muta nada")
}

func TestProcessMessage_Gasto(t *testing.T) {
	f := newPipelineFixture(t)

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM105", "gaste 20000 en domicilios"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeApplied, out.Kind)
	assert.Equal(t, "Gasto registrado: $20000 (domicilios).", out.Reply)
	assert.Equal(t, 1, f.backend.entryCount())
}

func TestProcessMessage_EntradaIncomprensible(t *testing.T) {
	f := newPipelineFixture(t)

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM106", "???!!!"))

	require.NoError(t, err, "la entrada malformada produce aclaración, no error")
	assert.Equal(t, pipeline.OutcomeClarification, out.Kind)
	assert.Contains(t, out.Reply, "No te entendí bien")
	assert.Zero(t, f.backend.entryCount())
}

func TestProcessMessage_OraculoCaidoPideAclaracion(t *testing.T) {
	f := newPipelineFixture(t)
	f.oracle.err = context.DeadlineExceeded

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM107", "se me acabaron las sopas"))

	require.NoError(t, err, "el oráculo caído degrada, nunca tumba el pipeline")
	assert.Equal(t, pipeline.OutcomeClarification, out.Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia: la reentrega del mismo message id devuelve la respuesta
// original sin tocar el libro.
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessMessage_ReentregaDevuelveLaMismaRespuesta(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 10, LowStockThreshold: 5})

	first, err := f.pipe.ProcessMessage(context.Background(), message("SM108", "vendi 2 maggi"))
	require.NoError(t, err)

	second, err := f.pipe.ProcessMessage(context.Background(), message("SM108", "vendi 2 maggi"))
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeDuplicate, second.Kind)
	assert.Equal(t, first.Reply, second.Reply, "misma respuesta para la reentrega")
	assert.EqualValues(t, 8, f.backend.quantity("maggi"), "se descuenta una sola vez")
	assert.Equal(t, 1, f.backend.entryCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Alerta de stock bajo: edge-triggered dentro del ciclo del mensaje.
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessMessage_AlertaAlCruzarUmbral(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 6, LowStockThreshold: 5})

	// 6 → 4: cruza el umbral, una alerta
	out, err := f.pipe.ProcessMessage(context.Background(), message("SM109", "vendi 2 maggi"))
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, 1, f.notifier.count())

	// 4 → 3: sigue bajo el umbral, ninguna alerta nueva
	out, err = f.pipe.ProcessMessage(context.Background(), message("SM110", "vendi 1 maggi"))
	require.NoError(t, err)
	assert.Nil(t, out.Alert)
	assert.Equal(t, 1, f.notifier.count(), "exactamente una alerta por cruce de umbral")
}

// El resultado del oráculo del clasificador se reutiliza en la extracción:
// una sola llamada por mensaje sin palabras clave.
func TestProcessMessage_UnaSolaLlamadaAlOraculo(t *testing.T) {
	f := newPipelineFixture(t)
	f.backend.put(&entity.InventoryItem{Key: "maggi", Name: "Maggi", Quantity: 10, LowStockThreshold: 5})
	f.oracle.result = &ports.NLUResult{
		Intent: entity.IntentSale, ItemName: "Maggi", Quantity: 2, Confidence: 0.85,
	}

	out, err := f.pipe.ProcessMessage(context.Background(), message("SM111", "salieron 2 sopitas"))

	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeApplied, out.Kind)
	assert.Equal(t, 1, f.oracle.calls, "clasificación y extracción comparten la llamada")
	assert.EqualValues(t, 8, f.backend.quantity("maggi"))
}
