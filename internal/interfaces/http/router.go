package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes registra las rutas del API de consultas.
func SetupRoutes(app *fiber.App, pedidos *PedidoHandler) {
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/pedidos", pedidos.Listar)
	app.Get("/pedidos/:numero", pedidos.Buscar)
}
