package processor

import (
	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
)

// ItemProcessor convierte una línea decodificada en una línea lista para
// persistir, resolviendo el producto contra el catálogo.
type ItemProcessor struct {
	produtos ProdutoResolver
}

// NovoItemProcessor construye el procesador de líneas.
func NovoItemProcessor(produtos ProdutoResolver) *ItemProcessor {
	return &ItemProcessor{produtos: produtos}
}

// Processar resuelve el producto de la línea y arma el PedidoItemSobel.
// "No encontrado" es un fallo duro para esta línea; el error carga las tres
// claves de búsqueda y el número de pedido para diagnóstico.
func (p *ItemProcessor) Processar(item entity.ItemPedido, numPedido string) (entity.PedidoItemSobel, error) {
	produto := p.produtos.BuscarProduto(item.EAN13, item.DUN14, item.CodProd)
	if produto == nil {
		return entity.PedidoItemSobel{}, &domain.ProdutoNaoEncontradoError{
			EAN13:     item.EAN13,
			DUN14:     item.DUN14,
			CodProd:   item.CodProd,
			NumPedido: numPedido,
		}
	}
	return entity.NovoPedidoItemSobel(item, produto), nil
}
