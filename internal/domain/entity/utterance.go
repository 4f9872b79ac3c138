package entity

import "time"

// Utterance es una unidad inmutable de entrada del tendero: un mensaje de chat
// (texto directo o texto extraído de una imagen). Se crea por mensaje entrante
// y se descarta al terminar el ciclo de procesamiento.
type Utterance struct {
	MessageID  string // id del transporte (ej. MessageSid de Twilio); clave de idempotencia
	From       string // identidad del canal de origen (ej. "whatsapp:+57...")
	Text       string
	FromImage  bool // true si Text proviene de extracción de imagen (OCR externo)
	ReceivedAt time.Time
}
