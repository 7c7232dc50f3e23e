package processor

import (
	"context"

	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
)

// ClienteResolver resuelve un cliente por CNPJ/CPF contra el maestro del ERP.
// (nil, nil) significa "no encontrado"; un error es un fallo del almacén.
type ClienteResolver interface {
	BuscarPorCNPJ(ctx context.Context, cnpj string) (*entity.Cliente, error)
}

// ProdutoResolver resuelve un producto del catálogo estático por sus tres
// claves candidatas. nil significa "no encontrado".
type ProdutoResolver interface {
	BuscarProduto(ean13, dun14, codprod string) *entity.Produto
}
