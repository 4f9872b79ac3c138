package http

import (
	"context"
	"encoding/xml"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tendero-bot/internal/application/pipeline"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// MessageProcessor contrato del motor de mensajes que consume el webhook.
// Lo satisface pipeline.Pipeline; los tests inyectan un doble.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, u entity.Utterance) (*pipeline.Outcome, error)
}

// WebhookHandler recibe los mensajes entrantes de WhatsApp (POST form de
// Twilio) y devuelve la respuesta como TwiML.
type WebhookHandler struct {
	pipeline MessageProcessor
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(p MessageProcessor) *WebhookHandler {
	return &WebhookHandler{pipeline: p}
}

// twimlResponse documento TwiML mínimo: una sola respuesta de texto.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// Receive godoc
// @Summary      Webhook de mensajes WhatsApp
// @Description  Punto de entrada del transporte: recibe el form POST de Twilio
//               (MessageSid, From, Body, NumMedia) y devuelve TwiML con la
//               confirmación o la pregunta de aclaración. Un fallo de
//               almacenamiento responde 500 para que Twilio reentregue.
// @Tags         webhook
// @Accept       x-www-form-urlencoded
// @Produce      xml
// @Param        MessageSid  formData  string  true   "Id del mensaje (clave de idempotencia)"
// @Param        From        formData  string  true   "Remitente (whatsapp:+57...)"
// @Param        Body        formData  string  false  "Texto del mensaje"
// @Param        NumMedia    formData  string  false  "Número de adjuntos"
// @Success      200  {string}  string  "TwiML"
// @Failure      400  {string}  string  "falta MessageSid"
// @Failure      500  {string}  string  "reentrega"
// @Router       /webhook/whatsapp [post]
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	u := entity.Utterance{
		MessageID:  c.FormValue("MessageSid"),
		From:       c.FormValue("From"),
		Text:       c.FormValue("Body"),
		FromImage:  c.FormValue("NumMedia") != "" && c.FormValue("NumMedia") != "0",
		ReceivedAt: time.Now(),
	}
	if u.MessageID == "" {
		// Sin id no hay idempotencia posible; se rechaza el POST malformado.
		return c.Status(fiber.StatusBadRequest).SendString("MessageSid requerido")
	}

	outcome, err := h.pipeline.ProcessMessage(c.Context(), u)
	if err != nil {
		// Almacenamiento caído: 500 → la política de reentrega del transporte
		// reintenta este mensaje, no nosotros.
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return sendTwiML(c, outcome.Reply)
}

func sendTwiML(c *fiber.Ctx, message string) error {
	body, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(xml.Header + string(body))
}
