package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pedido es el pedido de compra ya decodificado del formato de hilo Neogrid:
// montos en decimal exacto, fechas tipadas y CNPJs normalizados a dígitos.
type Pedido struct {
	NumeroPedido      string
	CNPJComprador     string
	CNPJFornecedor    string
	DataEmissao       *time.Time
	DataEntregaInicio *time.Time
	DataEntregaFim    *time.Time
	CondicaoEntrega   string
	CondicaoPagamento string
	DataVencimento    *time.Time
	ValorTotal        decimal.Decimal
	ValorIPITotal     decimal.Decimal
	Itens             []ItemPedido
}

// ItemPedido línea decodificada del pedido. Las tres claves de producto
// (EAN13, DUN14, CodProd) vienen sin resolver; la resolución contra el
// catálogo ocurre en el procesamiento.
type ItemPedido struct {
	EAN13            string
	DUN14            string
	CodProd          string
	DescricaoProduto string
	Quantidade       decimal.Decimal
	PrecoUnitario    decimal.Decimal
	ValorTotal       decimal.Decimal
	AliquotaIPI      decimal.Decimal
	ValorIPI         decimal.Decimal
	Referencia       string
	Unidade          string
}
