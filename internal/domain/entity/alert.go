package entity

import "time"

// AlertEvent notificación de stock bajo. Efímero: se consume una sola vez por
// el canal de notificaciones; su fallo de envío nunca revierte la mutación.
type AlertEvent struct {
	ItemKey   string
	ItemName  string
	Quantity  int64
	Threshold int64
	At        time.Time
}
