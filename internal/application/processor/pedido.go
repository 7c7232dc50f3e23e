package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// Resultado pedido listo para persistir más las fallas de línea toleradas.
// Falhas nunca vacía implica que al menos una línea quedó fuera del pedido;
// el caller decide cómo reportarlas.
type Resultado struct {
	Pedido *entity.PedidoSobel
	Falhas []error
}

// PedidoProcessor arma un pedido listo para persistir a partir de un pedido
// decodificado. Falla a nivel de pedido por cliente inexistente o validación;
// tolera fallas por línea continuando con las restantes.
type PedidoProcessor struct {
	clientes ClienteResolver
	itens    *ItemProcessor
	log      *logger.Logger
	agora    func() time.Time
}

// NovoPedidoProcessor construye el orquestador del pedido.
func NovoPedidoProcessor(clientes ClienteResolver, itens *ItemProcessor, log *logger.Logger) *PedidoProcessor {
	return &PedidoProcessor{
		clientes: clientes,
		itens:    itens,
		log:      log,
		agora:    time.Now,
	}
}

// Processar valida el cliente, procesa las líneas y arma el PedidoSobel.
//
// Política de fallas en dos niveles: cliente ausente o pedido sin líneas es
// fatal para el pedido; una línea sin producto se registra y se continúa con
// la siguiente. Solo si ninguna línea sobrevive el pedido completo falla.
func (p *PedidoProcessor) Processar(ctx context.Context, pedido *entity.Pedido) (*Resultado, error) {
	if pedido.CNPJComprador == "" {
		return nil, &domain.ValidacaoError{NumPedido: pedido.NumeroPedido, Motivo: "CNPJ del comprador ausente"}
	}

	cliente, err := p.clientes.BuscarPorCNPJ(ctx, pedido.CNPJComprador)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	if cliente == nil {
		return nil, &domain.ClienteNaoEncontradoError{CNPJ: pedido.CNPJComprador, NumPedido: pedido.NumeroPedido}
	}
	if !cliente.Ativo() {
		// El bloqueo no impide la inserción; queda a criterio del caller.
		p.log.Warn().
			Str("num_pedido", pedido.NumeroPedido).
			Str("cliente", cliente.Codigo).
			Msg("cliente bloqueado en Protheus; el pedido se procesa igual")
	}

	if len(pedido.Itens) == 0 {
		return nil, &domain.ValidacaoError{NumPedido: pedido.NumeroPedido, Motivo: "pedido sin líneas"}
	}

	itens := make([]entity.PedidoItemSobel, 0, len(pedido.Itens))
	var falhas []error
	for _, item := range pedido.Itens {
		processado, err := p.itens.Processar(item, pedido.NumeroPedido)
		if err != nil {
			falhas = append(falhas, err)
			continue
		}
		itens = append(itens, processado)
	}
	if len(itens) == 0 {
		return nil, &domain.ValidacaoError{NumPedido: pedido.NumeroPedido, Motivo: "ninguna línea válida"}
	}

	total := decimal.Zero
	for _, it := range itens {
		total = total.Add(it.ValorTotal)
	}

	ps := &entity.PedidoSobel{
		NumPedido:       pedido.NumeroPedido,
		DataPedido:      formatarData(pedido.DataEmissao),
		HoraInicio:      p.agora().Format("15:04"),
		DataEntrega:     formatarData(pedido.DataEntregaInicio),
		CodigoCliente:   cliente.Codigo,
		NomeCliente:     cliente.Nome(),
		LojaCliente:     cliente.CodigoEntrega,
		CodigoCondPagto: cliente.CodigoCondPagto,
		CodigoTabPreco:  cliente.CodigoTabPreco,
		Observacao:      pedido.CondicaoEntrega,
		ValorTotal:      total,
		QtdeItens:       len(itens),
		Itens:           itens,
	}
	return &Resultado{Pedido: ps, Falhas: falhas}, nil
}

func formatarData(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
