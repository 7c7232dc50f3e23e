package importer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sobeldigital/importador-neogrid/internal/application/importer"
	"github.com/sobeldigital/importador-neogrid/internal/application/processor"
	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/edi"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fonteFake struct {
	docs     []edi.Documento
	buscaErr error

	statuses  []edi.StatusDocumento
	statusErr error
}

func (f *fonteFake) BuscarPedidos(context.Context) ([]edi.Documento, error) {
	return f.docs, f.buscaErr
}

func (f *fonteFake) AtualizarStatus(_ context.Context, s []edi.StatusDocumento) error {
	f.statuses = s
	return f.statusErr
}

// procFake responde por número de pedido, para armar lotes mixtos.
type procFake struct {
	porPedido map[string]*processor.Resultado
	errores   map[string]error
}

func (f *procFake) Processar(_ context.Context, p *entity.Pedido) (*processor.Resultado, error) {
	if err, ok := f.errores[p.NumeroPedido]; ok {
		return nil, err
	}
	if res, ok := f.porPedido[p.NumeroPedido]; ok {
		return res, nil
	}
	return nil, errors.New("pedido inesperado: " + p.NumeroPedido)
}

type entradaLog struct {
	tipo, mensagem, numPedido string
}

type repoFake struct {
	insertados []*entity.PedidoSobel
	porPedido  map[string]error // error a devolver en Inserir, por NumPedido
	logs       []entradaLog
}

func (f *repoFake) Inserir(_ context.Context, p *entity.PedidoSobel) error {
	if err, ok := f.porPedido[p.NumPedido]; ok {
		return err
	}
	f.insertados = append(f.insertados, p)
	return nil
}

func (f *repoFake) LogProcessamento(_ context.Context, tipo, mensagem, numPedido string) {
	f.logs = append(f.logs, entradaLog{tipo: tipo, mensagem: mensagem, numPedido: numPedido})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func documento(docID, numPedido string) edi.Documento {
	return edi.Documento{
		DocID: docID,
		Content: []edi.Conteudo{{
			Order: edi.Order{
				Cabecalho: edi.Cabecalho{NumeroPedidoComprador: numPedido, CNPJComprador: "12345678000199"},
				Itens: edi.Itens{Item: edi.ListaItens{{
					CodigoProduto: "7896524726150", QuantidadePedida: "0000000000010",
				}}},
			},
		}},
	}
}

func resultadoOK(numPedido string, falhas ...error) *processor.Resultado {
	return &processor.Resultado{
		Pedido: &entity.PedidoSobel{
			NumPedido:     numPedido,
			CodigoCliente: "000123",
			QtdeItens:     1,
			ValorTotal:    decimal.RequireFromString("100.00"),
			Itens:         []entity.PedidoItemSobel{{CodProduto: "1001.01"}},
		},
		Falhas: falhas,
	}
}

// ── Executar ──────────────────────────────────────────────────────────────────

func TestExecutar_LoteMixto(t *testing.T) {
	fonte := &fonteFake{docs: []edi.Documento{
		documento("doc-1", "PC-1"),
		documento("doc-2", "PC-2"),
		documento("doc-3", "PC-3"),
	}}
	proc := &procFake{
		porPedido: map[string]*processor.Resultado{
			"PC-1": resultadoOK("PC-1"),
			"PC-2": resultadoOK("PC-2"),
		},
		errores: map[string]error{
			"PC-3": &domain.ClienteNaoEncontradoError{CNPJ: "12345678000199", NumPedido: "PC-3"},
		},
	}
	repo := &repoFake{porPedido: map[string]error{
		"PC-2": &domain.PedidoDuplicadoError{NumPedido: "PC-2"},
	}}

	resumo, err := importer.NewService(fonte, proc, repo, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, resumo.RunID)
	assert.Equal(t, 3, resumo.Total)
	assert.Equal(t, 1, resumo.Sucessos)
	assert.Equal(t, 1, resumo.Duplicados)
	assert.Equal(t, 1, resumo.Erros)
	assert.Equal(t, map[string]int{domain.TipoClienteNaoEncontrado: 1}, resumo.ErrosPorTipo)
	require.Len(t, resumo.Documentos, 3)

	// Solo el pedido nuevo llegó a la base.
	require.Len(t, repo.insertados, 1)
	assert.Equal(t, "PC-1", repo.insertados[0].NumPedido)

	// Éxito y duplicado se marcan PROCESSADO; el error se marca ERRO.
	require.Len(t, fonte.statuses, 3)
	assert.Equal(t, edi.StatusDocumento{DocID: "doc-1", Status: "PROCESSADO"}, fonte.statuses[0])
	assert.Equal(t, edi.StatusDocumento{DocID: "doc-2", Status: "PROCESSADO"}, fonte.statuses[1])
	assert.Equal(t, edi.StatusDocumento{DocID: "doc-3", Status: "ERRO"}, fonte.statuses[2])
}

func TestExecutar_BusquedaFallaAbortaElLote(t *testing.T) {
	fonte := &fonteFake{buscaErr: &domain.APIError{Operacao: "buscar pedidos", StatusCode: 401}}
	repo := &repoFake{}

	_, err := importer.NewService(fonte, &procFake{}, repo, logger.Nop()).Executar(context.Background())
	require.Error(t, err)
	assert.Empty(t, repo.insertados)
}

func TestExecutar_SinDocumentos(t *testing.T) {
	fonte := &fonteFake{}

	resumo, err := importer.NewService(fonte, &procFake{}, &repoFake{}, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resumo.Total)
	assert.Nil(t, fonte.statuses, "sin documentos no hay status que informar")
}

func TestExecutar_FalloDeStatusNoAbortaElLote(t *testing.T) {
	fonte := &fonteFake{
		docs:      []edi.Documento{documento("doc-1", "PC-1")},
		statusErr: errors.New("timeout"),
	}
	proc := &procFake{porPedido: map[string]*processor.Resultado{"PC-1": resultadoOK("PC-1")}}

	resumo, err := importer.NewService(fonte, proc, &repoFake{}, logger.Nop()).Executar(context.Background())
	require.NoError(t, err, "la actualización de status es best-effort")
	assert.Equal(t, 1, resumo.Sucessos)
}

func TestExecutar_DocumentoSinContenido(t *testing.T) {
	fonte := &fonteFake{docs: []edi.Documento{{DocID: "doc-vacio"}}}
	repo := &repoFake{}

	resumo, err := importer.NewService(fonte, &procFake{}, repo, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumo.Erros)
	assert.Equal(t, 1, resumo.ErrosPorTipo[domain.TipoErroValidacao])

	require.Len(t, repo.logs, 1)
	assert.Equal(t, "ERROR", repo.logs[0].tipo)
}

func TestExecutar_FallasDeLineaQuedanEnElRastro(t *testing.T) {
	falha := &domain.ProdutoNaoEncontradoError{EAN13: "9999999999999", NumPedido: "PC-1"}
	fonte := &fonteFake{docs: []edi.Documento{documento("doc-1", "PC-1")}}
	proc := &procFake{porPedido: map[string]*processor.Resultado{"PC-1": resultadoOK("PC-1", falha)}}
	repo := &repoFake{}

	resumo, err := importer.NewService(fonte, proc, repo, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumo.Sucessos, "las fallas de línea no degradan el documento a error")

	var warnings []entradaLog
	for _, l := range repo.logs {
		if l.tipo == "WARNING" {
			warnings = append(warnings, l)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].mensagem, "9999999999999")
}

func TestExecutar_ErrorDeBancoDeDatos(t *testing.T) {
	fonte := &fonteFake{docs: []edi.Documento{documento("doc-1", "PC-1")}}
	proc := &procFake{porPedido: map[string]*processor.Resultado{"PC-1": resultadoOK("PC-1")}}
	repo := &repoFake{porPedido: map[string]error{
		"PC-1": &domain.BancoDadosError{Operacao: "insertar pedido", Err: errors.New("conexión perdida")},
	}}

	resumo, err := importer.NewService(fonte, proc, repo, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumo.Erros)
	assert.Equal(t, 1, resumo.ErrosPorTipo[domain.TipoErroBancoDados])
	require.Len(t, fonte.statuses, 1)
	assert.Equal(t, "ERRO", fonte.statuses[0].Status)
}

// ── de documento crudo a fila persistida ──────────────────────────────────────

// clientesUnico y catalogoFijo arman un Processador real (no fake) para
// verificar el recorrido completo del documento JSON hasta el PedidoSobel.

type clientesUnico struct{ cliente *entity.Cliente }

func (c *clientesUnico) BuscarPorCNPJ(context.Context, string) (*entity.Cliente, error) {
	return c.cliente, nil
}

type catalogoFijo struct{ porEAN map[string]*entity.Produto }

func (c *catalogoFijo) BuscarProduto(ean13, _, _ string) *entity.Produto {
	return c.porEAN[ean13]
}

const docCrudoDosItens = `{
  "docId": "doc-e2e",
  "content": [
    {
      "order": {
        "cabecalho": {
          "numeroPedidoComprador": "PC-7777",
          "cnpjComprador": "12.345.678/0001-99",
          "dataHoraEmissao": "150720251030"
        },
        "sumario": {"valorTotalPedido": "0000000999999"},
        "itens": {
          "item": [
            {
              "codigoProduto": "7896524726150",
              "quantidadePedida": "0000000000100",
              "precoLiquidoUnitario": "0000000001050"
            },
            {
              "codigoProduto": "7896524700001",
              "quantidadePedida": "0000000000050",
              "precoLiquidoUnitario": "0000000000200"
            }
          ]
        }
      }
    }
  ]
}`

func TestExecutar_DocumentoCompletoHastaLaBase(t *testing.T) {
	var doc edi.Documento
	require.NoError(t, json.Unmarshal([]byte(docCrudoDosItens), &doc))

	clientes := &clientesUnico{cliente: &entity.Cliente{
		Codigo: "000123", RazaoSocial: "SUPERMERCADO EXEMPLO LTDA", CNPJ: "12345678000199",
	}}
	catalogo := &catalogoFijo{porEAN: map[string]*entity.Produto{
		"7896524726150": {Codigo: "1001.01", EAN13: "7896524726150", Unidade: "CX"},
		"7896524700001": {Codigo: "2002.05", EAN13: "7896524700001", Unidade: "UN"},
	}}
	proc := processor.NovoPedidoProcessor(clientes, processor.NovoItemProcessor(catalogo), logger.Nop())

	fonte := &fonteFake{docs: []edi.Documento{doc}}
	repo := &repoFake{}

	resumo, err := importer.NewService(fonte, proc, repo, logger.Nop()).Executar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumo.Sucessos)

	require.Len(t, repo.insertados, 1)
	ps := repo.insertados[0]
	assert.Equal(t, "PC-7777", ps.NumPedido)
	assert.Equal(t, "000123", ps.CodigoCliente)
	assert.Equal(t, "2025-07-15", ps.DataPedido)
	assert.Equal(t, 2, ps.QtdeItens)
	require.Len(t, ps.Itens, 2)

	// El total de cabecera es la suma de las líneas recalculadas
	// (100×10.50 + 50×2.00), no el total que informó el partner.
	assert.True(t, ps.ValorTotal.Equal(decimal.RequireFromString("1150.00")),
		"obtuvo %s", ps.ValorTotal)
	suma := decimal.Zero
	for _, it := range ps.Itens {
		suma = suma.Add(it.ValorTotal)
	}
	assert.True(t, ps.ValorTotal.Equal(suma))
}
