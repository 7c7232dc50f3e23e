package entity

import "strings"

// StatusBloqueado valor de A1_MSBLQL que marca un cliente bloqueado en Protheus.
const StatusBloqueado = "1"

// Cliente representa una fila del maestro de clientes (SA1010 de Protheus).
// Se carga por consulta, es inmutable y no se cachea entre pedidos.
type Cliente struct {
	Codigo            string
	RazaoSocial       string
	CNPJ              string // solo dígitos, 11 (CPF) o 14 (CNPJ)
	InscricaoEstadual string
	Endereco          string
	CodigoNomeCidade  string
	Estado            string
	Bairro            string
	Telefone          string
	CEP               string
	CodigoStatus      string // A1_MSBLQL: "1" = bloqueado
	NomeFantasia      string
	DataCadastro      string
	CodigoEntrega     string // código de la tienda/sucursal de entrega
	CodigoRegiao      int
	CodigoTabPreco    string
	CodigoCondPagto   string
	Email             string
}

// Nome devuelve el nombre fantasía o, en su ausencia, la razón social.
func (c *Cliente) Nome() string {
	if s := strings.TrimSpace(c.NomeFantasia); s != "" {
		return s
	}
	return strings.TrimSpace(c.RazaoSocial)
}

// CNPJFormatado devuelve el CNPJ en formato XX.XXX.XXX/XXXX-XX.
// Si el valor no tiene 14 dígitos se devuelve tal cual.
func (c *Cliente) CNPJFormatado() string {
	if len(c.CNPJ) != 14 {
		return c.CNPJ
	}
	return c.CNPJ[:2] + "." + c.CNPJ[2:5] + "." + c.CNPJ[5:8] + "/" + c.CNPJ[8:12] + "-" + c.CNPJ[12:14]
}

// Ativo indica si el cliente no está bloqueado. El bloqueo es informativo:
// la decisión de rechazar el pedido queda en manos del caller.
func (c *Cliente) Ativo() bool {
	return c.CodigoStatus != StatusBloqueado
}
