package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter da formato de presentación a montos. Solo para mostrar: nunca alimenta la aritmética.
type Formatter struct {
	printer  *message.Printer
	currency string
	scale    int32
}

// NewFormatter construye el formateador para un locale BCP 47 ("en", "es-CO"); si no se reconoce usa inglés.
func NewFormatter(locale, currency string, scale int32) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if scale < 0 {
		scale = 0
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: strings.ToUpper(strings.TrimSpace(currency)),
		scale:    scale,
	}
}

// Amount formatea un monto con agrupación de miles: "TZS 85,000".
func (f *Formatter) Amount(d decimal.Decimal) string {
	s := f.Number(d)
	if f.currency == "" {
		return s
	}
	return f.currency + " " + s
}

// Number formatea el monto sin moneda, redondeado a la escala de la moneda.
func (f *Formatter) Number(d decimal.Decimal) string {
	d = d.Round(f.scale)
	if f.scale == 0 && d.Abs().LessThan(decimal.NewFromInt(1<<53)) {
		return f.printer.Sprint(number.Decimal(d.IntPart()))
	}
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(int(f.scale))))
}

// Input reagrupa el texto que el usuario va tecleando ("60000" -> "60,000"), conservando
// la parte decimal tal como se escribió. Si la parte entera no es numérica devuelve el texto limpio.
func (f *Formatter) Input(raw string) string {
	clean := groupSeparators.Replace(strings.TrimSpace(raw))
	if clean == "" {
		return ""
	}
	intPart, frac, hasDot := strings.Cut(clean, ".")
	if intPart == "" {
		intPart = "0"
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || n < 0 {
		return clean
	}
	out := f.printer.Sprint(number.Decimal(n))
	if hasDot {
		out += "." + frac
	}
	return out
}
