package ledger

import "strings"

// canonical pliega un nombre de item a clave de inventario. El nombre llega
// ya normalizado desde el pipeline (minúsculas, sin acentos); aquí solo se
// colapsan espacios como red de seguridad para callers directos.
func canonical(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
