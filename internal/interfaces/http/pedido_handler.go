package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/sobeldigital/importador-neogrid/internal/domain/entity"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// PedidoReader consultas de lectura sobre los pedidos persistidos.
type PedidoReader interface {
	BuscarPedido(ctx context.Context, numPedido string) (*entity.PedidoSobel, error)
	ListarPorPeriodo(ctx context.Context, inicio, fim string) ([]entity.PedidoResumo, error)
}

// PedidoHandler expone los reportes de pedidos importados.
type PedidoHandler struct {
	repo PedidoReader
	log  *logger.Logger
}

// NewPedidoHandler construye el handler.
func NewPedidoHandler(repo PedidoReader, log *logger.Logger) *PedidoHandler {
	return &PedidoHandler{repo: repo, log: log}
}

// Buscar GET /pedidos/:numero — un pedido con sus líneas.
func (h *PedidoHandler) Buscar(c *fiber.Ctx) error {
	numero := c.Params("numero")
	pedido, err := h.repo.BuscarPedido(c.Context(), numero)
	if err != nil {
		h.log.Error().Err(err).Str("num_pedido", numero).Msg("buscar pedido")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "error al consultar el pedido",
		})
	}
	if pedido == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "pedido no encontrado",
		})
	}
	return c.JSON(pedido)
}

// Listar GET /pedidos?inicio=YYYY-MM-DD&fim=YYYY-MM-DD — resumen por período.
func (h *PedidoHandler) Listar(c *fiber.Ctx) error {
	inicio := c.Query("inicio")
	fim := c.Query("fim")
	if inicio == "" || fim == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "parámetros inicio y fim son obligatorios (YYYY-MM-DD)",
		})
	}
	resumos, err := h.repo.ListarPorPeriodo(c.Context(), inicio, fim)
	if err != nil {
		h.log.Error().Err(err).Msg("listar pedidos por período")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "error al listar pedidos",
		})
	}
	return c.JSON(fiber.Map{
		"total":   len(resumos),
		"pedidos": resumos,
	})
}
