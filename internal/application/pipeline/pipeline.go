package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/pkg/logger"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

// Resultados terminales de un mensaje (etiqueta de métrica y de log).
const (
	OutcomeApplied       = "applied"
	OutcomeQuery         = "query"
	OutcomeClarification = "clarification"
	OutcomeRejected      = "rejected"
	OutcomeDuplicate     = "duplicate"
)

// Outcome resultado de procesar un mensaje: la respuesta al tendero y, si la
// hubo, la entrada aplicada y la alerta disparada.
type Outcome struct {
	Kind  string
	Reply string
	Entry *entity.LedgerEntry
	Alert *entity.AlertEvent
}

// Pipeline orquesta el ciclo completo de un mensaje entrante:
// normalizar → clasificar → extraer → reconciliar → evaluar alerta → responder.
// Se invoca una vez por mensaje; varios mensajes se procesan en paralelo y el
// único recurso mutable compartido (el inventario) queda serializado por clave
// dentro del Reconciler.
type Pipeline struct {
	classifier *IntentClassifier
	extractor  *EntityExtractor
	reconciler *ledger.Reconciler
	items      repository.ItemRepository
	entries    repository.LedgerRepository
	idem       ports.IdempotencyStore
	notifier   ports.AlertNotifier

	historyDepth int
	log          *logger.Logger
	metrics      *metrics.Metrics
}

// Deps dependencias del pipeline.
type Deps struct {
	Classifier   *IntentClassifier
	Extractor    *EntityExtractor
	Reconciler   *ledger.Reconciler
	Items        repository.ItemRepository
	Entries      repository.LedgerRepository
	Idempotency  ports.IdempotencyStore
	Notifier     ports.AlertNotifier
	HistoryDepth int
	Log          *logger.Logger
	Metrics      *metrics.Metrics
}

// New construye el pipeline.
func New(d Deps) *Pipeline {
	depth := d.HistoryDepth
	if depth <= 0 {
		depth = 10
	}
	return &Pipeline{
		classifier:   d.Classifier,
		extractor:    d.Extractor,
		reconciler:   d.Reconciler,
		items:        d.Items,
		entries:      d.Entries,
		idem:         d.Idempotency,
		notifier:     d.Notifier,
		historyDepth: depth,
		log:          d.Log,
		metrics:      d.Metrics,
	}
}

// ProcessMessage es el único punto de entrada que consume la capa de
// transporte. Devuelve error solo cuando el almacenamiento falló y el mensaje
// debe reentregarse; todos los demás caminos producen una respuesta.
func (p *Pipeline) ProcessMessage(ctx context.Context, u entity.Utterance) (*Outcome, error) {
	start := time.Now()
	defer func() { p.metrics.ProcessSeconds.Observe(time.Since(start).Seconds()) }()

	// Idempotencia: entrega at-least-once del transporte. Un mensaje repetido
	// devuelve la respuesta original sin tocar el libro.
	first, err := p.idem.Register(ctx, u.MessageID)
	if err != nil {
		// Registro de idempotencia caído: se sigue procesando; la restricción
		// de unicidad del message id en el libro actúa de respaldo.
		p.log.Warn().Err(err).Str("message_id", u.MessageID).Msg("registro de idempotencia no disponible")
	} else if !first {
		reply, _ := p.idem.GetReply(ctx, u.MessageID)
		if reply == "" {
			reply = "Ya recibí ese mensaje, lo estoy procesando."
		}
		p.finish(OutcomeDuplicate, u)
		return &Outcome{Kind: OutcomeDuplicate, Reply: reply}, nil
	}

	outcome, err := p.process(ctx, &u)
	if err != nil {
		// El mensaje no se aplicó: liberar la clave para que la reentrega
		// del transporte no sea tratada como duplicado.
		if relErr := p.idem.Release(ctx, u.MessageID); relErr != nil {
			p.log.Warn().Err(relErr).Str("message_id", u.MessageID).Msg("no se pudo liberar la clave de idempotencia")
		}
		p.finish("error", u)
		return nil, err
	}

	if err := p.idem.SaveReply(ctx, u.MessageID, outcome.Reply); err != nil {
		p.log.Warn().Err(err).Str("message_id", u.MessageID).Msg("no se pudo guardar la respuesta")
	}
	p.finish(outcome.Kind, u)
	return outcome, nil
}

func (p *Pipeline) process(ctx context.Context, u *entity.Utterance) (*Outcome, error) {
	normalized, err := Normalize(u.Text)
	if err != nil {
		return &Outcome{Kind: OutcomeClarification, Reply: ComposeClarification("")}, nil
	}

	nluCtx, err := p.buildNLUContext(ctx)
	if err != nil {
		return nil, err
	}

	cls, oracleRes := p.classifier.Classify(ctx, normalized, nluCtx)

	p.log.Debug().
		Str("message_id", u.MessageID).
		Str("intent", string(cls.Intent)).
		Float64("confidence", cls.Confidence).
		Bool("by_rule", cls.ByRule).
		Bool("from_image", u.FromImage).
		Msg("mensaje clasificado")

	switch cls.Intent {
	case entity.IntentQuery:
		return p.answerQuery(ctx, normalized, oracleRes, nluCtx)
	case entity.IntentUnknown:
		return &Outcome{Kind: OutcomeClarification, Reply: ComposeClarification("")}, nil
	}

	draft, err := p.extractor.Extract(ctx, normalized, cls, oracleRes, nluCtx)
	if err != nil {
		var ef *ExtractionFailure
		if errors.As(err, &ef) {
			return &Outcome{Kind: OutcomeClarification, Reply: ComposeClarification(ef.Question)}, nil
		}
		return nil, err
	}

	result, err := p.reconciler.Apply(ctx, draft, u)
	if err != nil {
		return p.handleRejection(ctx, err, draft)
	}

	outcome := &Outcome{
		Kind:  OutcomeApplied,
		Entry: result.Entry,
		Reply: ComposeApplied(result.Entry, result.Item, result.Created),
	}
	if result.Entry.Intent == entity.IntentExpense {
		return outcome, nil
	}

	if alert := ledger.EvaluateAlert(result.PreviousQty, result.Item, time.Now()); alert != nil {
		outcome.Alert = alert
		p.metrics.AlertsFired.Inc()
		// Best-effort: el fallo del canal se registra y jamás revierte la mutación.
		if err := p.notifier.SendAlert(ctx, *alert); err != nil {
			p.log.Error().Err(err).Str("item", alert.ItemKey).Msg("no se pudo enviar la alerta de stock bajo")
		}
	}
	return outcome, nil
}

// answerQuery responde una consulta de stock sin mutar nada.
func (p *Pipeline) answerQuery(
	ctx context.Context,
	normalized string,
	oracleRes *ports.NLUResult,
	nluCtx ports.NLUContext,
) (*Outcome, error) {
	_, key := p.extractor.ResolveQueryItem(ctx, normalized, oracleRes, nluCtx)
	if key == "" {
		return &Outcome{Kind: OutcomeClarification, Reply: ComposeClarification("¿De qué producto quieres saber el stock?")}, nil
	}

	item, err := p.reconciler.QuantityOf(ctx, p.items, key)
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: OutcomeQuery, Reply: ComposeQuery(item)}, nil
}

// handleRejection convierte los rechazos de negocio en respuestas; los fallos
// de almacenamiento suben como error para que el transporte reentregue.
func (p *Pipeline) handleRejection(ctx context.Context, err error, draft *entity.DraftTransaction) (*Outcome, error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		current, getErr := p.items.GetByKey(ctx, draft.ItemKey)
		if getErr != nil {
			current = nil
		}
		return &Outcome{Kind: OutcomeRejected, Reply: ComposeRejection(err, draft, current)}, nil
	case errors.Is(err, domain.ErrUnknownItem):
		return &Outcome{Kind: OutcomeRejected, Reply: ComposeRejection(err, draft, nil)}, nil
	case errors.Is(err, domain.ErrDuplicateMessage):
		// El registro de idempotencia no lo vio pero el libro sí: reentrega
		// que esquivó Redis. Resolver como duplicado, nunca como error.
		return &Outcome{Kind: OutcomeDuplicate, Reply: "Ese mensaje ya quedó registrado."}, nil
	default:
		return nil, fmt.Errorf("reconciliar mensaje: %w", err)
	}
}

// buildNLUContext arma el contexto del oráculo: inventario conocido e
// historial reciente del libro.
func (p *Pipeline) buildNLUContext(ctx context.Context) (ports.NLUContext, error) {
	known, err := p.items.ListNames(ctx)
	if err != nil {
		return ports.NLUContext{}, errors.Join(domain.ErrStoreUnavailable, err)
	}

	var history []string
	if recent, err := p.entries.ListRecent(ctx, p.historyDepth); err == nil {
		for _, e := range recent {
			history = append(history, fmt.Sprintf("%s %s %+d", e.Intent, e.ItemKey, e.Delta))
		}
	}

	return ports.NLUContext{KnownItems: known, RecentHistory: history}, nil
}

func (p *Pipeline) finish(kind string, u entity.Utterance) {
	p.metrics.MessagesTotal.WithLabelValues(kind).Inc()
	p.log.Info().
		Str("message_id", u.MessageID).
		Str("from", u.From).
		Str("outcome", kind).
		Msg("mensaje procesado")
}
