package domain

import (
	"errors"
	"fmt"
)

// Tipos terminales de error del pipeline. Cada documento procesado termina
// clasificado en uno de estos tipos para el resumen del lote.
const (
	TipoClienteNaoEncontrado = "CLIENTE_NAO_ENCONTRADO"
	TipoProdutoNaoEncontrado = "PRODUTO_NAO_ENCONTRADO"
	TipoPedidoDuplicado      = "PEDIDO_DUPLICADO"
	TipoErroValidacao        = "ERRO_VALIDACAO"
	TipoErroBancoDados       = "ERRO_BANCO_DADOS"
	TipoErroAPI              = "ERRO_API"
	TipoErroProcessamento    = "ERRO_PROCESSAMENTO"
)

// ValidacaoError campo obligatorio ausente o malformado. Fatal para el pedido.
type ValidacaoError struct {
	NumPedido string
	Motivo    string
}

func (e *ValidacaoError) Error() string {
	if e.NumPedido == "" {
		return "validación: " + e.Motivo
	}
	return fmt.Sprintf("validación del pedido %s: %s", e.NumPedido, e.Motivo)
}

// ClienteNaoEncontradoError el CNPJ/CPF no existe en la base de clientes. Fatal para el pedido.
type ClienteNaoEncontradoError struct {
	CNPJ      string
	NumPedido string
}

func (e *ClienteNaoEncontradoError) Error() string {
	return fmt.Sprintf("cliente con CNPJ %s no encontrado (pedido %s)", e.CNPJ, e.NumPedido)
}

// ProdutoNaoEncontradoError ninguna de las tres claves de búsqueda resolvió
// un producto del catálogo. Fatal solo para la línea; el pedido continúa.
type ProdutoNaoEncontradoError struct {
	EAN13     string
	DUN14     string
	CodProd   string
	NumPedido string
}

func (e *ProdutoNaoEncontradoError) Error() string {
	return fmt.Sprintf("producto no encontrado - EAN13: %q, DUN14: %q, CodProd: %q (pedido %s)",
		e.EAN13, e.DUN14, e.CodProd, e.NumPedido)
}

// PedidoDuplicadoError la clave compuesta (número, fecha, hora inicial,
// cliente) ya existe en la base. El pedido se omite, no se reintenta.
type PedidoDuplicadoError struct {
	NumPedido string
}

func (e *PedidoDuplicadoError) Error() string {
	return fmt.Sprintf("pedido %s ya existe en la base de datos", e.NumPedido)
}

// BancoDadosError envuelve cualquier fallo del almacén destino. La transacción
// en curso se revierte; el pedido puede reintentarse reenviando el documento.
type BancoDadosError struct {
	Operacao string
	Err      error
}

func (e *BancoDadosError) Error() string {
	return fmt.Sprintf("error de banco de datos en %s: %v", e.Operacao, e.Err)
}

func (e *BancoDadosError) Unwrap() error { return e.Err }

// APIError fallo de la API Neogrid (búsqueda o actualización de status).
type APIError struct {
	Operacao   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error en la API Neogrid (%s, HTTP %d): %v", e.Operacao, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("error en la API Neogrid (%s): %v", e.Operacao, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Autenticacion credenciales inválidas (HTTP 401).
func (e *APIError) Autenticacion() bool { return e.StatusCode == 401 }

// Autorizacion acceso denegado al recurso (HTTP 403).
func (e *APIError) Autorizacion() bool { return e.StatusCode == 403 }

// NaoEncontrado recurso inexistente (HTTP 404).
func (e *APIError) NaoEncontrado() bool { return e.StatusCode == 404 }

// Transitorio indica si vale la pena reintentar con backoff (429 o 5xx).
func (e *APIError) Transitorio() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ProcessamentoError fallo genérico al armar la estructura de persistencia.
type ProcessamentoError struct {
	NumPedido string
	Err       error
}

func (e *ProcessamentoError) Error() string {
	return fmt.Sprintf("error al procesar el pedido %s: %v", e.NumPedido, e.Err)
}

func (e *ProcessamentoError) Unwrap() error { return e.Err }

// TipoDe clasifica un error en su tipo terminal para el resumen del lote.
func TipoDe(err error) string {
	var (
		validacao *ValidacaoError
		cliente   *ClienteNaoEncontradoError
		produto   *ProdutoNaoEncontradoError
		duplicado *PedidoDuplicadoError
		banco     *BancoDadosError
		api       *APIError
	)
	switch {
	case errors.As(err, &cliente):
		return TipoClienteNaoEncontrado
	case errors.As(err, &produto):
		return TipoProdutoNaoEncontrado
	case errors.As(err, &duplicado):
		return TipoPedidoDuplicado
	case errors.As(err, &validacao):
		return TipoErroValidacao
	case errors.As(err, &banco):
		return TipoErroBancoDados
	case errors.As(err, &api):
		return TipoErroAPI
	default:
		return TipoErroProcessamento
	}
}
