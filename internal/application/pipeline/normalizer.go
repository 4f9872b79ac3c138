package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/tendero-bot/internal/domain"
)

// foldTransformer descompone (NFD), elimina marcas diacríticas y recompone (NFC):
// "vendí" → "vendi", "Máquina" → "Maquina". Determinista y sin estado compartido
// porque transform.Chain construye transformadores nuevos en cada Normalize.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// numberWords palabras numéricas (español e inglés) que se pliegan a dígitos
// para que el extractor solo tenga que buscar tokens numéricos.
var numberWords = map[string]string{
	"un": "1", "una": "1", "uno": "1", "one": "1",
	"dos": "2", "two": "2",
	"tres": "3", "three": "3",
	"cuatro": "4", "four": "4",
	"cinco": "5", "five": "5",
	"seis": "6", "six": "6",
	"siete": "7", "seven": "7",
	"ocho": "8", "eight": "8",
	"nueve": "9", "nine": "9",
	"diez": "10", "ten": "10",
	"once": "11", "eleven": "11",
	"doce": "12", "twelve": "12",
	"quince": "15", "fifteen": "15",
	"veinte": "20", "twenty": "20",
	"treinta": "30", "thirty": "30",
	"cincuenta": "50", "fifty": "50",
	"cien": "100", "hundred": "100",
	"media": "1", "docena": "12", "dozen": "12",
}

// Normalize limpia y canoniza la entrada cruda (texto directo o transcrito de
// imagen) en un solo utterance candidato: minúsculas, sin acentos, puntuación
// plegada a espacios, espacios colapsados y palabras numéricas a dígitos.
// Es pura y determinista. Devuelve ErrMalformedInput solo si tras recortar no
// queda nada.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", domain.ErrMalformedInput
	}

	folded, _, err := transform.String(foldTransformer(), s)
	if err != nil {
		// Entrada no-UTF8 o rota: misma categoría que entrada vacía.
		return "", domain.ErrMalformedInput
	}
	s = strings.ToLower(folded)

	// Puntuación a espacios, conservando dígitos, letras, '$' y el '.' decimal.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '$' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	for i, f := range fields {
		// "3." al final de frase → "3"
		f = strings.Trim(f, ".")
		if d, ok := numberWords[f]; ok {
			f = d
		}
		fields[i] = f
	}

	out := strings.Join(fields, " ")
	if out == "" {
		return "", domain.ErrMalformedInput
	}
	return out, nil
}

// CanonicalKey reduce un nombre de producto a su clave canónica de inventario:
// la misma normalización del utterance aplicada al nombre aislado.
func CanonicalKey(name string) string {
	key, err := Normalize(name)
	if err != nil {
		return ""
	}
	return key
}
