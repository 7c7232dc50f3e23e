package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	apihttp "github.com/sobeldigital/importador-neogrid/internal/interfaces/http"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

type readerFake struct {
	pedido  *entity.PedidoSobel
	resumos []entity.PedidoResumo
	err     error
}

func (f *readerFake) BuscarPedido(context.Context, string) (*entity.PedidoSobel, error) {
	return f.pedido, f.err
}

func (f *readerFake) ListarPorPeriodo(context.Context, string, string) ([]entity.PedidoResumo, error) {
	return f.resumos, f.err
}

func nuevaApp(repo *readerFake) *fiber.App {
	app := fiber.New()
	apihttp.SetupRoutes(app, apihttp.NewPedidoHandler(repo, logger.Nop()))
	return app
}

func hacer(t *testing.T, app *fiber.App, url string) (*nethttp.Response, map[string]any) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(nethttp.MethodGet, url, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &parsed))
	}
	return res, parsed
}

func TestBuscar_OK(t *testing.T) {
	repo := &readerFake{pedido: &entity.PedidoSobel{
		NumPedido:     "PC-9001",
		CodigoCliente: "000123",
		QtdeItens:     2,
		ValorTotal:    decimal.RequireFromString("1125.00"),
	}}

	res, body := hacer(t, nuevaApp(repo), "/pedidos/PC-9001")
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.Equal(t, "PC-9001", body["NumPedido"])
	assert.Equal(t, "000123", body["CodigoCliente"])
}

func TestBuscar_NoEncontrado(t *testing.T) {
	res, body := hacer(t, nuevaApp(&readerFake{}), "/pedidos/PC-0000")
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
	assert.Contains(t, body["error"], "no encontrado")
}

func TestBuscar_ErrorDelBanco(t *testing.T) {
	repo := &readerFake{err: errors.New("conexión perdida")}
	res, _ := hacer(t, nuevaApp(repo), "/pedidos/PC-9001")
	assert.Equal(t, nethttp.StatusInternalServerError, res.StatusCode)
}

func TestListar_OK(t *testing.T) {
	repo := &readerFake{resumos: []entity.PedidoResumo{
		{NumPedido: "PC-9001", CodigoCliente: "000123", DataPedido: "2025-07-15"},
		{NumPedido: "PC-9002", CodigoCliente: "000456", DataPedido: "2025-07-14"},
	}}

	res, body := hacer(t, nuevaApp(repo), "/pedidos?inicio=2025-07-01&fim=2025-07-31")
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.EqualValues(t, 2, body["total"])
}

func TestListar_SinPeriodoEs400(t *testing.T) {
	res, _ := hacer(t, nuevaApp(&readerFake{}), "/pedidos?inicio=2025-07-01")
	assert.Equal(t, nethttp.StatusBadRequest, res.StatusCode)

	res, _ = hacer(t, nuevaApp(&readerFake{}), "/pedidos")
	assert.Equal(t, nethttp.StatusBadRequest, res.StatusCode)
}

func TestHealth(t *testing.T) {
	res, body := hacer(t, nuevaApp(&readerFake{}), "/health")
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
