package edi

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Funciones de decodificación del formato empaquetado de Neogrid: enteros con
// relleno de ceros para montos (escala implícita de centavos), cantidades con
// punto decimal explícito y fechas DDMMYYYY[HHMM]. Todas son totales: una
// entrada malformada produce cero/ausente, nunca un panic ni un error.

// DecodeAmount decodifica un monto. Sin punto decimal el valor es un entero
// escalado por 100 (los dos últimos dígitos son centavos); con punto decimal
// el valor se toma tal cual. Entrada vacía o inválida produce cero.
func DecodeAmount(raw string) decimal.Decimal {
	s := stripZeros(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if strings.Contains(s, ".") {
		return d
	}
	return d.Shift(-2)
}

// DecodeQuantity decodifica una cantidad. A diferencia de los montos no hay
// escala implícita: el valor ya trae su punto decimal.
func DecodeQuantity(raw string) decimal.Decimal {
	s := stripZeros(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecodePercent decodifica un porcentaje decimal con relleno de ceros.
func DecodePercent(raw string) decimal.Decimal {
	return DecodeQuantity(raw)
}

// DecodeDate espera DDMMYYYY opcionalmente seguido de HHMM. Entrada corta o
// inválida devuelve nil ("ausente"); un sufijo de hora inválido degrada a
// medianoche en vez de descartar la fecha.
func DecodeDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if len(s) < 8 {
		return nil
	}
	t, err := time.Parse("02012006", s[:8])
	if err != nil {
		return nil
	}
	if len(s) >= 12 {
		if hm, err := time.Parse("1504", s[8:12]); err == nil {
			t = t.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute)
		}
	}
	return &t
}

// CleanTaxID elimina todo carácter no numérico de un CNPJ/CPF.
func CleanTaxID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// InterpretProductCode interpreta el valor de codigoProduto y lo clasifica
// como EAN13, DUN14 o código interno según su formato.
func InterpretProductCode(codigo string) (ean13, dun14, codprod string) {
	codigo = strings.TrimSpace(codigo)
	if !soloDigitos(codigo) {
		return "", "", codigo
	}
	switch len(codigo) {
	case 13:
		return codigo, "", ""
	case 14:
		return "", codigo, ""
	default:
		return "", "", codigo
	}
}

// stripZeros recorta espacios y ceros a la izquierda preservando el caso
// "todo ceros", que debe seguir decodificando a cero y no a vacío.
func stripZeros(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		trimmed = "0" + trimmed
	}
	return trimmed
}

func soloDigitos(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
