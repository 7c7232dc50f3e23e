package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sobeldigital/importador-neogrid/internal/domain"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// colunasDataLog nombres candidatos de la columna de fecha de
// T_LOG_PROCESSAMENTO según la instalación Protheus. Se sondea una sola vez
// al construir el repositorio, nunca por llamada.
var colunasDataLog = []string{"dataregistro", "data_registro", "datahora", "dt_log", "created_at"}

// PedidoRepo persistencia de pedidos en el esquema Protheus: chequeo de
// duplicados por clave compuesta, inserción transaccional cabecera+líneas y
// consultas de lectura. Una instancia posee su acceso al banco y no debe
// compartirse entre goroutines sin serialización externa.
type PedidoRepo struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	// columna de fecha del log de procesamiento; vacía si la tabla no tiene ninguna conocida
	colunaDataLog string
}

// NovoPedidoRepo construye el repositorio y sondea la capacidad del log de
// procesamiento (nombre de la columna de fecha) una única vez.
func NovoPedidoRepo(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) *PedidoRepo {
	r := &PedidoRepo{pool: pool, log: log}
	r.colunaDataLog = r.sondarColunaDataLog(ctx)
	return r
}

func (r *PedidoRepo) sondarColunaDataLog(ctx context.Context) string {
	rows, err := r.pool.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = 't_log_processamento'`)
	if err != nil {
		r.log.Warn().Err(err).Msg("no se pudo sondear t_log_processamento; log sin columna de fecha")
		return ""
	}
	defer rows.Close()
	var existentes []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return ""
		}
		existentes = append(existentes, col)
	}
	return escolherColunaData(existentes)
}

// escolherColunaData elige la primera candidata presente en la tabla.
func escolherColunaData(existentes []string) string {
	presentes := make(map[string]bool, len(existentes))
	for _, c := range existentes {
		presentes[c] = true
	}
	for _, candidata := range colunasDataLog {
		if presentes[candidata] {
			return candidata
		}
	}
	return ""
}

// comReconexao ejecuta op y, solo si falló por conexión perdida, verifica el
// banco y reintenta exactamente una vez. No es un loop de reintentos.
func (r *PedidoRepo) comReconexao(ctx context.Context, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil || !conexaoPerdida(err) {
		return err
	}
	if pingErr := r.pool.Ping(ctx); pingErr != nil {
		r.log.Error().Err(pingErr).Msg("reconexión al banco falló")
		return err
	}
	r.log.Warn().Err(err).Msg("conexión perdida; operación reintentada tras reconectar")
	return op(ctx)
}

// Existe verifica el duplicado por la clave compuesta (número de seguimiento,
// fecha del pedido, hora inicial, cliente). El mismo número de pedido del
// partner puede repetirse legítimamente entre envíos distintos, por eso el
// número solo no alcanza. Con algún campo de la clave vacío el chequeo
// responde "no existe" con un warning: mejor dejar pasar una inserción
// legítima que bloquearla por datos incompletos.
func (r *PedidoRepo) Existe(ctx context.Context, p *entity.PedidoSobel) bool {
	if p.NumPedido == "" || p.DataPedido == "" || p.HoraInicio == "" || p.CodigoCliente == "" {
		r.log.Warn().Str("num_pedido", p.NumPedido).
			Msg("clave compuesta incompleta; chequeo de duplicado respondiendo 'no existe'")
		return false
	}
	var existe bool
	err := r.comReconexao(ctx, func(ctx context.Context) error {
		var um int
		err := r.pool.QueryRow(ctx, `
			SELECT 1 FROM t_pedido_sobel
			WHERE numpedidosobel = $1 AND datapedido = $2::date
			  AND horainicial = $3 AND codigocliente = $4`,
			p.NumPedido, p.DataPedido, p.HoraInicio, p.CodigoCliente,
		).Scan(&um)
		if errors.Is(err, pgx.ErrNoRows) {
			existe = false
			return nil
		}
		if err != nil {
			return err
		}
		existe = true
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("num_pedido", p.NumPedido).
			Msg("chequeo de duplicado falló; respondiendo 'no existe'")
		return false
	}
	return existe
}

// Inserir persiste el pedido completo (cabecera + líneas) en una transacción
// explícita: todo o nada. Un duplicado detectado justo antes de insertar
// produce PedidoDuplicadoError en lugar de omitirse en silencio. El número de
// línea (NUMITEM) se asigna bajo lock exclusivo de la tabla de ítems,
// sostenido solo durante la inserción de este pedido.
func (r *PedidoRepo) Inserir(ctx context.Context, p *entity.PedidoSobel) error {
	return r.comReconexao(ctx, func(ctx context.Context) error {
		if r.Existe(ctx, p) {
			return &domain.PedidoDuplicadoError{NumPedido: p.NumPedido}
		}

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return &domain.BancoDadosError{Operacao: "begin", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := r.inserirCabecalho(ctx, tx, p); err != nil {
			return err
		}
		if err := r.inserirItens(ctx, tx, p); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return &domain.BancoDadosError{Operacao: "commit", Err: err}
		}
		r.log.Info().Str("num_pedido", p.NumPedido).Int("itens", len(p.Itens)).
			Msg("pedido grabado")
		return nil
	})
}

func (r *PedidoRepo) inserirCabecalho(ctx context.Context, tx pgx.Tx, p *entity.PedidoSobel) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO t_pedido_sobel (
			numpedidosobel, lojacliente, datapedido, horainicial, horafinal,
			dataentrega, codigocliente, nomecliente, codigocondpagto,
			codigotabpreco, qtdeitens, valorbruto, observacaoi, datagravacaoacacia
		) VALUES ($1, $2, $3::date, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.NumPedido, nullIfEmpty(p.LojaCliente), p.DataPedido, p.HoraInicio,
		nullIfEmpty(p.HoraFim), nullIfEmpty(p.DataEntrega), p.CodigoCliente,
		p.NomeCliente, nullIfEmpty(p.CodigoCondPagto), nullIfEmpty(p.CodigoTabPreco),
		p.QtdeItens, p.ValorTotal, nullIfEmpty(p.Observacao), time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.PedidoDuplicadoError{NumPedido: p.NumPedido}
		}
		return &domain.BancoDadosError{Operacao: "insert cabecera", Err: err}
	}
	return nil
}

func (r *PedidoRepo) inserirItens(ctx context.Context, tx pgx.Tx, p *entity.PedidoSobel) error {
	// El lock exclusivo existe solo para la asignación de NUMITEM entre
	// procesos concurrentes; se libera en el commit/rollback del pedido.
	if _, err := tx.Exec(ctx, `LOCK TABLE t_pedidoitem_sobel IN ACCESS EXCLUSIVE MODE`); err != nil {
		return &domain.BancoDadosError{Operacao: "lock itens", Err: err}
	}
	var numItem int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(numitem), 0) FROM t_pedidoitem_sobel`,
	).Scan(&numItem); err != nil {
		return &domain.BancoDadosError{Operacao: "secuencia numitem", Err: err}
	}

	for _, item := range p.Itens {
		numItem++
		_, err := tx.Exec(ctx, `
			INSERT INTO t_pedidoitem_sobel (
				numitem, numpedidoafv, datapedido, horainicial, codigocliente,
				codigoproduto, qtdevenda, qtdebonificada, valorvenda, valorbruto,
				descontoi, descontoii, valorverba, codigovendedoresp, msgimportacao
			) VALUES ($1, $2, $3::date, $4, $5, $6, $7, 0, $8, $9, 0, 0, 0, NULL, NULL)`,
			numItem, p.NumPedido, p.DataPedido, p.HoraInicio, p.CodigoCliente,
			item.CodProduto, item.Quantidade, item.ValorUnitario, item.ValorTotal,
		)
		if err != nil {
			return &domain.BancoDadosError{
				Operacao: fmt.Sprintf("insert línea %s", item.CodProduto),
				Err:      err,
			}
		}
	}
	return nil
}

// BuscarPedido devuelve un pedido persistido con sus líneas, o nil si no existe.
func (r *PedidoRepo) BuscarPedido(ctx context.Context, numPedido string) (*entity.PedidoSobel, error) {
	var pedido *entity.PedidoSobel
	err := r.comReconexao(ctx, func(ctx context.Context) error {
		var p entity.PedidoSobel
		var dataPedido time.Time
		var dataEntrega *time.Time
		var loja, obs *string
		err := r.pool.QueryRow(ctx, `
			SELECT numpedidosobel, codigocliente, nomecliente, lojacliente,
			       datapedido, horainicial, dataentrega, qtdeitens, valorbruto, observacaoi
			FROM t_pedido_sobel
			WHERE numpedidosobel = $1`, numPedido,
		).Scan(&p.NumPedido, &p.CodigoCliente, &p.NomeCliente, &loja,
			&dataPedido, &p.HoraInicio, &dataEntrega, &p.QtdeItens, &p.ValorTotal, &obs)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return &domain.BancoDadosError{Operacao: "buscar pedido", Err: err}
		}
		p.DataPedido = dataPedido.Format("2006-01-02")
		if dataEntrega != nil {
			p.DataEntrega = dataEntrega.Format("2006-01-02")
		}
		p.LojaCliente = deref(loja)
		p.Observacao = deref(obs)

		rows, err := r.pool.Query(ctx, `
			SELECT codigoproduto, qtdevenda, valorvenda, valorbruto
			FROM t_pedidoitem_sobel
			WHERE numpedidoafv = $1
			ORDER BY numitem`, numPedido)
		if err != nil {
			return &domain.BancoDadosError{Operacao: "buscar líneas", Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var it entity.PedidoItemSobel
			if err := rows.Scan(&it.CodProduto, &it.Quantidade, &it.ValorUnitario, &it.ValorTotal); err != nil {
				return &domain.BancoDadosError{Operacao: "scan línea", Err: err}
			}
			p.Itens = append(p.Itens, it)
		}
		if err := rows.Err(); err != nil {
			return &domain.BancoDadosError{Operacao: "buscar líneas", Err: err}
		}
		pedido = &p
		return nil
	})
	return pedido, err
}

// ListarPorPeriodo lista pedidos con fecha dentro de [inicio, fim] (formato
// "2006-01-02"), más recientes primero.
func (r *PedidoRepo) ListarPorPeriodo(ctx context.Context, inicio, fim string) ([]entity.PedidoResumo, error) {
	var resumos []entity.PedidoResumo
	err := r.comReconexao(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `
			SELECT numpedidosobel, codigocliente, datapedido, qtdeitens,
			       valorbruto, datagravacaoacacia
			FROM t_pedido_sobel
			WHERE datapedido BETWEEN $1::date AND $2::date
			ORDER BY datapedido DESC, datagravacaoacacia DESC`, inicio, fim)
		if err != nil {
			return &domain.BancoDadosError{Operacao: "listar pedidos", Err: err}
		}
		defer rows.Close()
		resumos = resumos[:0]
		for rows.Next() {
			var res entity.PedidoResumo
			var dataPedido time.Time
			if err := rows.Scan(&res.NumPedido, &res.CodigoCliente, &dataPedido,
				&res.QtdeItens, &res.ValorBruto, &res.DataGravacao); err != nil {
				return &domain.BancoDadosError{Operacao: "scan pedido", Err: err}
			}
			res.DataPedido = dataPedido.Format("2006-01-02")
			resumos = append(resumos, res)
		}
		if err := rows.Err(); err != nil {
			return &domain.BancoDadosError{Operacao: "listar pedidos", Err: err}
		}
		return nil
	})
	return resumos, err
}

// LogProcessamento registra un evento diagnóstico en T_LOG_PROCESSAMENTO.
// Best-effort: un fallo al escribir el diagnóstico jamás falla la operación
// principal; solo queda en el log estructurado.
func (r *PedidoRepo) LogProcessamento(ctx context.Context, tipo, mensagem, numPedido string) {
	query := `INSERT INTO t_log_processamento (tipo, mensagem, num_pedido) VALUES ($1, $2, $3)`
	if r.colunaDataLog != "" {
		query = fmt.Sprintf(
			`INSERT INTO t_log_processamento (tipo, mensagem, num_pedido, %s) VALUES ($1, $2, $3, now())`,
			r.colunaDataLog)
	}
	if _, err := r.pool.Exec(ctx, query, tipo, mensagem, nullIfEmpty(numPedido)); err != nil {
		r.log.Warn().Err(err).Str("tipo", tipo).Msg("no se pudo registrar el log de procesamiento")
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
