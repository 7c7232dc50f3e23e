package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sobeldigital/importador-neogrid/internal/application/processor"
	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/edi"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// Status terminales de un documento dentro del lote.
const (
	StatusSucesso   = "sucesso"
	StatusDuplicado = "duplicado"
	StatusErro      = "erro"
)

// Status informados a Neogrid tras el procesamiento.
const (
	statusNeogridProcessado = "PROCESSADO"
	statusNeogridErro       = "ERRO"
)

// Fonte operaciones contra la red Neogrid.
type Fonte interface {
	BuscarPedidos(ctx context.Context) ([]edi.Documento, error)
	AtualizarStatus(ctx context.Context, statuses []edi.StatusDocumento) error
}

// Processador arma el pedido listo para persistir.
type Processador interface {
	Processar(ctx context.Context, pedido *entity.Pedido) (*processor.Resultado, error)
}

// Persistencia operaciones de escritura sobre el ERP.
type Persistencia interface {
	Inserir(ctx context.Context, p *entity.PedidoSobel) error
	LogProcessamento(ctx context.Context, tipo, mensagem, numPedido string)
}

// ResultadoDocumento desenlace de un documento del lote.
type ResultadoDocumento struct {
	DocID     string
	NumPedido string
	Status    string
	TipoErro  string // vacío salvo Status == erro
	Mensagem  string
}

// Resumo totales de una corrida del importador.
type Resumo struct {
	RunID        string
	Total        int
	Sucessos     int
	Duplicados   int
	Erros        int
	ErrosPorTipo map[string]int
	Documentos   []ResultadoDocumento
}

// Service corre un lote completo: busca documentos en Neogrid, procesa cada
// uno y persiste los pedidos válidos. Un fallo en un documento nunca aborta
// el lote; cada desenlace queda contado y clasificado en el resumen.
type Service struct {
	fonte Fonte
	proc  Processador
	repo  Persistencia
	log   *logger.Logger
}

// NewService construye el importador.
func NewService(fonte Fonte, proc Processador, repo Persistencia, log *logger.Logger) *Service {
	return &Service{fonte: fonte, proc: proc, repo: repo, log: log}
}

// Executar corre un lote. Devuelve error solo si la búsqueda inicial de
// documentos falla; todo lo demás queda en el resumen.
func (s *Service) Executar(ctx context.Context) (*Resumo, error) {
	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Logger()

	docs, err := s.fonte.BuscarPedidos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("búsqueda de pedidos en Neogrid falló")
		return nil, err
	}

	resumo := &Resumo{RunID: runID, Total: len(docs), ErrosPorTipo: make(map[string]int)}
	if len(docs) == 0 {
		log.Info().Msg("ningún pedido pendiente en Neogrid")
		return resumo, nil
	}
	log.Info().Int("documentos", len(docs)).Msg("iniciando procesamiento del lote")

	var statuses []edi.StatusDocumento
	for _, doc := range docs {
		res := s.processarDocumento(ctx, doc)
		resumo.Documentos = append(resumo.Documentos, res)

		switch res.Status {
		case StatusSucesso:
			resumo.Sucessos++
			statuses = append(statuses, edi.StatusDocumento{DocID: doc.DocID, Status: statusNeogridProcessado})
		case StatusDuplicado:
			resumo.Duplicados++
			statuses = append(statuses, edi.StatusDocumento{DocID: doc.DocID, Status: statusNeogridProcessado})
		default:
			resumo.Erros++
			resumo.ErrosPorTipo[res.TipoErro]++
			statuses = append(statuses, edi.StatusDocumento{DocID: doc.DocID, Status: statusNeogridErro})
		}
	}

	// La actualización de status es best-effort: informar el fallo y seguir.
	if err := s.fonte.AtualizarStatus(ctx, statuses); err != nil {
		log.Warn().Err(err).Msg("actualización de status en Neogrid falló")
	}

	log.Info().
		Int("total", resumo.Total).
		Int("sucessos", resumo.Sucessos).
		Int("duplicados", resumo.Duplicados).
		Int("erros", resumo.Erros).
		Msg("lote finalizado")
	return resumo, nil
}

// processarDocumento lleva un documento a su desenlace terminal. Toda salida
// queda también registrada en el log de procesamiento del ERP (best-effort).
func (s *Service) processarDocumento(ctx context.Context, doc edi.Documento) ResultadoDocumento {
	if len(doc.Content) == 0 {
		msg := fmt.Sprintf("documento %s sin contenido válido", doc.DocID)
		s.repo.LogProcessamento(ctx, "ERROR", msg, doc.DocID)
		return ResultadoDocumento{DocID: doc.DocID, Status: StatusErro,
			TipoErro: domain.TipoErroValidacao, Mensagem: msg}
	}

	pedido := edi.ParsePedido(doc.Content[0])

	resultado, err := s.proc.Processar(ctx, pedido)
	if err != nil {
		return s.erro(ctx, doc.DocID, pedido.NumeroPedido, err)
	}
	for _, falha := range resultado.Falhas {
		// Línea descartada pero pedido vivo: warning y rastro diagnóstico.
		s.log.Warn().Str("num_pedido", pedido.NumeroPedido).Str("doc_id", doc.DocID).
			Msg(falha.Error())
		s.repo.LogProcessamento(ctx, "WARNING", falha.Error(), pedido.NumeroPedido)
	}

	if err := s.repo.Inserir(ctx, resultado.Pedido); err != nil {
		var dup *domain.PedidoDuplicadoError
		if errors.As(err, &dup) {
			msg := fmt.Sprintf("pedido %s ya existía en la base", dup.NumPedido)
			s.repo.LogProcessamento(ctx, "WARNING", msg, dup.NumPedido)
			return ResultadoDocumento{DocID: doc.DocID, NumPedido: dup.NumPedido,
				Status: StatusDuplicado, Mensagem: msg}
		}
		return s.erro(ctx, doc.DocID, resultado.Pedido.NumPedido, err)
	}

	msg := fmt.Sprintf("pedido %s procesado y grabado (%d líneas, %d descartadas)",
		resultado.Pedido.NumPedido, len(resultado.Pedido.Itens), len(resultado.Falhas))
	s.repo.LogProcessamento(ctx, "INFO", msg, resultado.Pedido.NumPedido)
	return ResultadoDocumento{DocID: doc.DocID, NumPedido: resultado.Pedido.NumPedido,
		Status: StatusSucesso, Mensagem: msg}
}

func (s *Service) erro(ctx context.Context, docID, numPedido string, err error) ResultadoDocumento {
	tipo := domain.TipoDe(err)
	msg := fmt.Sprintf("error al procesar documento %s: %v", docID, err)
	s.log.Error().Str("doc_id", docID).Str("tipo", tipo).Str("num_pedido", numPedido).
		Msg(msg)
	s.repo.LogProcessamento(ctx, "ERROR", msg, numPedido)
	return ResultadoDocumento{DocID: docID, NumPedido: numPedido, Status: StatusErro,
		TipoErro: tipo, Mensagem: msg}
}
