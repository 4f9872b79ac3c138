package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// Verificar en tiempo de compilación que GeminiService implementa NLUService.
var _ ports.NLUService = (*GeminiService)(nil)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

	// systemPrompt define el rol del modelo y el formato de salida.
	// Con response_mime_type=application/json Gemini devuelve JSON puro,
	// sin bloques de markdown que limpiar.
	systemPrompt = `Eres el contador automático de una tienda de barrio. El tendero escribe mensajes informales en español, inglés o mezcla, sobre ventas, compras de mercancía, gastos o consultas de stock.
Devuelve ÚNICAMENTE un objeto JSON (sin texto adicional) con esta estructura exacta:
{
  "intent": "SALE" | "RESTOCK" | "EXPENSE" | "QUERY" | "UNKNOWN",
  "item": "<nombre del producto, o cadena vacía>",
  "category": "<categoría del gasto, o cadena vacía>",
  "quantity": <entero, 0 si no aplica>,
  "amount": <número decimal, 0 si no aplica>,
  "confidence": <número decimal entre 0.0 y 1.0>
}

Reglas:
- SALE resta unidades del inventario; RESTOCK las suma; EXPENSE es un gasto sin inventario; QUERY pregunta por el stock.
- Si el mensaje menciona un producto del inventario conocido, usa exactamente ese nombre en "item".
- confidence: 0.9–1.0 = certeza alta, 0.7–0.89 = probable, <0.5 = dudoso.
- Si no entiendes el mensaje, intent UNKNOWN con confidence 0.
- No incluyas texto fuera del JSON.`
)

// GeminiService adaptador que implementa NLUService llamando a la API REST de
// Google Gemini. Usa únicamente net/http; no requiere el SDK oficial.
type GeminiService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. model suele ser "gemini-1.5-flash".
// Si apiKey está vacío las llamadas devuelven ErrOracleUnavailable en vez de panic.
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de red; el caller también pone WithTimeout
		},
	}
}

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"` // "application/json" → JSON puro garantizado
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// nluPayload es el JSON que esperamos recibir del modelo.
type nluPayload struct {
	Intent     string  `json:"intent"`
	Item       string  `json:"item"`
	Category   string  `json:"category"`
	Quantity   int64   `json:"quantity"`
	Amount     float64 `json:"amount"`
	Confidence float64 `json:"confidence"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// ClassifyAndExtract envía el mensaje a Gemini junto con el inventario conocido
// y el historial reciente, y devuelve la interpretación estructurada.
func (s *GeminiService) ClassifyAndExtract(
	ctx context.Context,
	text string,
	nluCtx ports.NLUContext,
) (*ports.NLUResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY no configurado", domain.ErrOracleUnavailable)
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildUserText(text, nluCtx)}}},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.1,
			MaxOutputTokens:  512,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("NLU: serializar request: %w", err)
	}

	url := fmt.Sprintf(geminiBaseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("NLU: crear HTTP request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrOracleTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("NLU: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("%w: Gemini %d: %s", domain.ErrOracleUnavailable, errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: Gemini HTTP %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return nil, fmt.Errorf("NLU: deserializar respuesta Gemini: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: Gemini devolvió respuesta vacía", domain.ErrOracleUnavailable)
	}

	var parsed nluPayload
	rawText := gemResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		return nil, fmt.Errorf("NLU: parsear JSON del modelo: %w (respuesta: %s)", err, rawText)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return &ports.NLUResult{
		Intent:     parseIntent(parsed.Intent),
		ItemName:   strings.TrimSpace(parsed.Item),
		Category:   strings.TrimSpace(parsed.Category),
		Quantity:   parsed.Quantity,
		Amount:     decimal.NewFromFloat(parsed.Amount),
		Confidence: confidence,
	}, nil
}

// buildUserText arma el mensaje del usuario con el contexto del inventario:
// items conocidos (ordenados para que la llamada sea determinista) e historial.
func buildUserText(text string, nluCtx ports.NLUContext) string {
	var b strings.Builder
	b.WriteString("Mensaje: ")
	b.WriteString(text)

	if len(nluCtx.KnownItems) > 0 {
		names := make([]string, 0, len(nluCtx.KnownItems))
		for _, name := range nluCtx.KnownItems {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nInventario conocido: ")
		b.WriteString(strings.Join(names, ", "))
	}
	if len(nluCtx.RecentHistory) > 0 {
		b.WriteString("\nMovimientos recientes: ")
		b.WriteString(strings.Join(nluCtx.RecentHistory, "; "))
	}
	return b.String()
}

func parseIntent(s string) entity.Intent {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE":
		return entity.IntentSale
	case "RESTOCK":
		return entity.IntentRestock
	case "EXPENSE":
		return entity.IntentExpense
	case "QUERY":
		return entity.IntentQuery
	default:
		return entity.IntentUnknown
	}
}
