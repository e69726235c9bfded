package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/application/dto"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DiscountUC   *checkout.DiscountUseCase
	AllocationUC *checkout.AllocationUseCase
	JWTSecret    string
	JWTIssuer    string
	// Gatherer origen de /metrics; nil no registra la ruta.
	Gatherer prometheus.Gatherer
	// StoreName y StorePing describen el store de sesiones en /health.
	StoreName string
	StorePing func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Checkout (requiere Bearer Token y rol de caja)
	cashier := api.Group("/checkout",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(RoleAdmin, RoleCajero, RoleVendedor),
	)

	discounts := cashier.Group("/discounts")
	discountHandler := NewDiscountHandler(deps.DiscountUC)
	discounts.Post("/preview", discountHandler.Preview)
	discounts.Post("/apply", discountHandler.Apply)
	discounts.Post("/clear", discountHandler.Clear)

	allocations := cashier.Group("/allocations")
	allocationHandler := NewAllocationHandler(deps.AllocationUC)
	allocations.Post("/", allocationHandler.Open)
	allocations.Get("/:id", allocationHandler.Get)
	allocations.Post("/:id/select", allocationHandler.Select)
	allocations.Post("/:id/deselect", allocationHandler.Deselect)
	allocations.Post("/:id/confirm", allocationHandler.Confirm)
	allocations.Delete("/:id", allocationHandler.Cancel)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := dto.HealthResponse{Status: "ok", Store: deps.StoreName}
		if deps.StorePing != nil {
			if err := deps.StorePing(c.UserContext()); err != nil {
				resp.Status = "degraded"
				return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
			}
		}
		return c.JSON(resp)
	}
}
