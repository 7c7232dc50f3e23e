package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sobeldigital/importador-neogrid/internal/domain/edi"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
)

// Columnas del maestro de clientes de Protheus (SA1010) mapeadas al modelo.
const clienteColunas = `
	a1_cod, a1_nome, a1_cgc, a1_inscr, a1_end, a1_cod_mun, a1_est, a1_bairro,
	a1_tel, a1_cep, a1_msblql, a1_nreduz, a1_dtcad, a1_regiao, a1_tabela,
	a1_cond, a1_email`

// ClienteRepo consulta el maestro de clientes (usable con pool o tx).
type ClienteRepo struct {
	q Querier
}

// NovoClienteRepo construye el adaptador. Pasar pool o tx (Querier).
func NovoClienteRepo(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

// BuscarPorCNPJ resuelve un cliente por CNPJ/CPF normalizado. Un documento
// que no tenga 11 o 14 dígitos corta en "no encontrado" sin consultar.
// Exactamente un viaje al banco por llamada; los bloqueados también se
// devuelven (el status es un campo, no un filtro).
func (r *ClienteRepo) BuscarPorCNPJ(ctx context.Context, cnpj string) (*entity.Cliente, error) {
	limpio := edi.CleanTaxID(cnpj)
	if len(limpio) != 11 && len(limpio) != 14 {
		return nil, nil
	}
	query := `SELECT ` + clienteColunas + `
		FROM sa1010
		WHERE a1_cgc = $1 AND d_e_l_e_t_ = ''`
	return r.buscarUm(ctx, query, limpio)
}

// BuscarPorCodigo busca un cliente por su código interno (A1_COD).
func (r *ClienteRepo) BuscarPorCodigo(ctx context.Context, codigo string) (*entity.Cliente, error) {
	if codigo == "" {
		return nil, nil
	}
	query := `SELECT ` + clienteColunas + `
		FROM sa1010
		WHERE a1_cod = $1 AND d_e_l_e_t_ = ''`
	return r.buscarUm(ctx, query, codigo)
}

// ListarAtivos lista clientes no bloqueados, ordenados por razón social.
func (r *ClienteRepo) ListarAtivos(ctx context.Context, limite int) ([]*entity.Cliente, error) {
	query := `SELECT ` + clienteColunas + `
		FROM sa1010
		WHERE a1_msblql <> '1' AND d_e_l_e_t_ = ''
		ORDER BY a1_nome
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limite)
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *ClienteRepo) buscarUm(ctx context.Context, query string, arg any) (*entity.Cliente, error) {
	c, err := scanCliente(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	return c, nil
}

// scanCliente decodifica una fila de SA1010 en un Cliente. Los NULL del
// esquema legado se leen como punteros y colapsan a vacío.
func scanCliente(row pgx.Row) (*entity.Cliente, error) {
	var c entity.Cliente
	var inscr, end, codMun, est, bairro, tel, cep, msblql, nreduz, dtcad, tabela, cond, email *string
	var regiao *int
	err := row.Scan(
		&c.Codigo, &c.RazaoSocial, &c.CNPJ, &inscr, &end, &codMun, &est, &bairro,
		&tel, &cep, &msblql, &nreduz, &dtcad, &regiao, &tabela,
		&cond, &email,
	)
	if err != nil {
		return nil, err
	}
	c.InscricaoEstadual = deref(inscr)
	c.Endereco = deref(end)
	c.CodigoNomeCidade = deref(codMun)
	c.Estado = deref(est)
	c.Bairro = deref(bairro)
	c.Telefone = deref(tel)
	c.CEP = deref(cep)
	c.CodigoStatus = deref(msblql)
	c.NomeFantasia = deref(nreduz)
	c.DataCadastro = deref(dtcad)
	c.CodigoTabPreco = deref(tabela)
	c.CodigoCondPagto = deref(cond)
	c.Email = deref(email)
	// En Protheus la dirección de entrega por defecto es el propio código.
	c.CodigoEntrega = c.Codigo
	if regiao != nil {
		c.CodigoRegiao = *regiao
	}
	return &c, nil
}

func deref(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}
