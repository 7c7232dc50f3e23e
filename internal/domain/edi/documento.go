package edi

import (
	"encoding/json"
	"fmt"

	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
)

// Formato de documento de la red Neogrid. Todos los campos llegan como
// strings codificados; la conversión a valores tipados ocurre en ParsePedido.

// Documento documento EDI devuelto por la búsqueda de pedidos.
type Documento struct {
	DocID   string     `json:"docId"`
	Content []Conteudo `json:"content"`
}

// Conteudo primer nivel del contenido: el pedido de compra.
type Conteudo struct {
	Order Order `json:"order"`
}

// Order secciones del pedido en el formato Neogrid.
type Order struct {
	Cabecalho Cabecalho `json:"cabecalho"`
	Pagamento Pagamento `json:"pagamento"`
	Sumario   Sumario   `json:"sumario"`
	Itens     Itens     `json:"itens"`
}

// Cabecalho sección de cabecera del pedido.
type Cabecalho struct {
	NumeroPedidoComprador  string `json:"numeroPedidoComprador"`
	CNPJComprador          string `json:"cnpjComprador"`
	CNPJFornecedor         string `json:"cnpjFornecedor"`
	DataHoraEmissao        string `json:"dataHoraEmissao"`
	DataHoraInicialEntrega string `json:"dataHoraInicialEntrega"`
	DataHoraFinalEntrega   string `json:"dataHoraFinalEntrega"`
	CondicaoEntrega        string `json:"condicaoEntrega"`
}

// Pagamento sección de condiciones de pago.
type Pagamento struct {
	CondicaoPagamento string `json:"condicaoPagamento"`
	DataVencimento    string `json:"dataVencimento"`
}

// Sumario totales del pedido informados por el partner.
type Sumario struct {
	ValorTotalPedido string `json:"valorTotalPedido"`
	ValorTotalIPI    string `json:"valorTotalIPI"`
}

// Itens contenedor de líneas. Neogrid serializa "item" como arreglo cuando
// hay varias líneas y como objeto suelto cuando hay una sola.
type Itens struct {
	Item ListaItens `json:"item"`
}

// ListaItens absorbe las dos formas de "item" (arreglo u objeto único).
type ListaItens []ItemWire

func (l *ListaItens) UnmarshalJSON(b []byte) error {
	var lista []ItemWire
	if err := json.Unmarshal(b, &lista); err == nil {
		*l = lista
		return nil
	}
	var unico ItemWire
	if err := json.Unmarshal(b, &unico); err != nil {
		return fmt.Errorf("itens.item no es arreglo ni objeto: %w", err)
	}
	*l = ListaItens{unico}
	return nil
}

// ItemWire línea cruda del pedido.
type ItemWire struct {
	NumeroItem           string `json:"numeroItem"`
	CodigoProduto        string `json:"codigoProduto"`
	DescricaoProduto     string `json:"descricaoProduto"`
	QuantidadePedida     string `json:"quantidadePedida"`
	PrecoLiquidoUnitario string `json:"precoLiquidoUnitario"`
	ValorLiquidoItem     string `json:"valorLiquidoItem"`
	AliquotaIPI          string `json:"aliquotaIPI"`
	ValorUnitarioIPI     string `json:"valorUnitarioIPI"`
	ReferenciaProduto    string `json:"referenciaProduto"`
	UnidadeMedida        string `json:"unidadeMedida"`
}

// StatusDocumento par (documento, status) para la actualización de estado en
// Neogrid después del procesamiento.
type StatusDocumento struct {
	DocID  string `json:"docId"`
	Status string `json:"status"`
}

// ParsePedido decodifica un contenido Neogrid al pedido tipado del dominio.
// El payload crudo se descarta después de este paso.
func ParsePedido(c Conteudo) *entity.Pedido {
	cab := c.Order.Cabecalho
	pag := c.Order.Pagamento
	sum := c.Order.Sumario

	p := &entity.Pedido{
		NumeroPedido:      cab.NumeroPedidoComprador,
		CNPJComprador:     CleanTaxID(cab.CNPJComprador),
		CNPJFornecedor:    CleanTaxID(cab.CNPJFornecedor),
		DataEmissao:       DecodeDate(cab.DataHoraEmissao),
		DataEntregaInicio: DecodeDate(cab.DataHoraInicialEntrega),
		DataEntregaFim:    DecodeDate(cab.DataHoraFinalEntrega),
		CondicaoEntrega:   cab.CondicaoEntrega,
		CondicaoPagamento: pag.CondicaoPagamento,
		DataVencimento:    DecodeDate(pag.DataVencimento),
		ValorTotal:        DecodeAmount(sum.ValorTotalPedido),
		ValorIPITotal:     DecodeAmount(sum.ValorTotalIPI),
	}

	for _, it := range c.Order.Itens.Item {
		ean13, dun14, codprod := InterpretProductCode(it.CodigoProduto)
		p.Itens = append(p.Itens, entity.ItemPedido{
			EAN13:            ean13,
			DUN14:            dun14,
			CodProd:          codprod,
			DescricaoProduto: it.DescricaoProduto,
			Quantidade:       DecodeQuantity(it.QuantidadePedida),
			PrecoUnitario:    DecodeAmount(it.PrecoLiquidoUnitario),
			ValorTotal:       DecodeAmount(it.ValorLiquidoItem),
			AliquotaIPI:      DecodePercent(it.AliquotaIPI),
			ValorIPI:         DecodeAmount(it.ValorUnitarioIPI),
			Referencia:       it.ReferenciaProduto,
			Unidade:          it.UnidadeMedida,
		})
	}
	return p
}
