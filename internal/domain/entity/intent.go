package entity

// Intent etiqueta de intención del mensaje. Conjunto cerrado.
type Intent string

// Intenciones soportadas por el motor.
const (
	IntentSale    Intent = "SALE"    // venta: resta stock
	IntentRestock Intent = "RESTOCK" // compra/reposición: suma stock
	IntentExpense Intent = "EXPENSE" // gasto: solo libro, sin inventario
	IntentQuery   Intent = "QUERY"   // consulta de stock, sin mutación
	IntentUnknown Intent = "UNKNOWN"
)

// Classification resultado del clasificador de intención. Derivado, no se persiste.
type Classification struct {
	Intent     Intent
	Confidence float64 // [0,1]
	ByRule     bool    // true si la decidió una regla determinista, false si vino del oráculo
}
