package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// Verificar en tiempo de compilación que Notifier implementa AlertNotifier.
var _ ports.AlertNotifier = (*Notifier)(nil)

const messagesURLFormat = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// Notifier envía alertas de stock por WhatsApp usando la API REST de Twilio
// (POST form-encoded con basic auth). Usa net/http; no requiere el SDK oficial.
type Notifier struct {
	accountSID string
	authToken  string
	from       string // ej. "whatsapp:+14155238886"
	to         string // número del dueño de la tienda
	httpClient *http.Client
}

// NewNotifier construye el notificador. Si faltan credenciales o destino,
// SendAlert registra la alerta en modo simulación vía el error devuelto.
func NewNotifier(accountSID, authToken, from, to string) *Notifier {
	return &Notifier{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendAlert envía la notificación de stock bajo. Best-effort: el caller
// registra el error en el log y nunca revierte la mutación que la disparó.
func (n *Notifier) SendAlert(ctx context.Context, alert entity.AlertEvent) error {
	if n.accountSID == "" || n.authToken == "" || n.to == "" {
		return fmt.Errorf("twilio: credenciales o destino sin configurar (alerta de %s descartada)", alert.ItemKey)
	}

	body := fmt.Sprintf(
		"*Alerta de stock bajo*\n\n*%s* quedó en %d unidades (umbral: %d).\nRecomendado: reordenar pronto.",
		alert.ItemName, alert.Quantity, alert.Threshold,
	)

	form := url.Values{}
	form.Set("From", n.from)
	form.Set("To", n.to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf(messagesURLFormat, n.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: crear request: %w", err)
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("twilio: HTTP %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
