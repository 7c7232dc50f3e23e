package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PedidoSobel cabecera lista para persistir en T_PEDIDO_SOBEL. Las fechas se
// mantienen como texto ("2006-01-02" / "15:04") porque así viajan a las
// columnas del esquema Protheus. Inmutable después de construida.
type PedidoSobel struct {
	NumPedido       string // número de seguimiento interno (NUMPEDIDOSOBEL)
	DataPedido      string
	HoraInicio      string
	HoraFim         string
	DataEntrega     string
	CodigoCliente   string
	NomeCliente     string
	LojaCliente     string
	CodigoCondPagto string
	CodigoTabPreco  string
	Observacao      string
	ValorTotal      decimal.Decimal
	QtdeItens       int
	Itens           []PedidoItemSobel
}

// PedidoItemSobel línea lista para persistir en T_PEDIDOITEM_SOBEL.
type PedidoItemSobel struct {
	CodProduto       string
	DescricaoProduto string
	Quantidade       decimal.Decimal
	ValorUnitario    decimal.Decimal
	ValorTotal       decimal.Decimal
	Unidade          string
	EAN13            string
	DUN14            string
}

// NovoPedidoItemSobel arma la línea de persistencia combinando la línea
// decodificada con el producto resuelto. El total persistido se recalcula
// siempre como cantidad × precio unitario; el total informado por el partner
// no es autoritativo.
func NovoPedidoItemSobel(item ItemPedido, produto *Produto) PedidoItemSobel {
	return PedidoItemSobel{
		CodProduto:       produto.Codigo,
		DescricaoProduto: produto.Descricao,
		Quantidade:       item.Quantidade,
		ValorUnitario:    item.PrecoUnitario,
		ValorTotal:       item.Quantidade.Mul(item.PrecoUnitario),
		Unidade:          produto.Unidade,
		EAN13:            produto.EAN13,
		DUN14:            produto.DUN14,
	}
}

// PedidoResumo proyección de lectura para el listado por período.
type PedidoResumo struct {
	NumPedido     string
	CodigoCliente string
	DataPedido    string
	QtdeItens     int
	ValorBruto    decimal.Decimal
	DataGravacao  time.Time
}
