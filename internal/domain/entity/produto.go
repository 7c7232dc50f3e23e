package entity

import "github.com/shopspring/decimal"

// Produto entrada del catálogo estático de productos. Se carga una vez al
// inicio del proceso y es de solo lectura durante toda la ejecución.
type Produto struct {
	Codigo        string          `json:"codigo"`
	Descricao     string          `json:"descricao"`
	EAN13         string          `json:"ean13"`
	DUN14         string          `json:"dun14"`
	PesoBruto     decimal.Decimal `json:"peso_bruto"`
	PesoLiquido   decimal.Decimal `json:"peso_liquido"`
	QtdeEmbalagem decimal.Decimal `json:"qtde_embalagem"`
	Unidade       string          `json:"unidade"`
	PercAcrescMax decimal.Decimal `json:"perc_acresc_max"`
	FlagUso       int             `json:"flag_uso"`
	FlagVerba     int             `json:"flag_verba"`
}
