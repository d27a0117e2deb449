package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LocationUC     *usecase.LocationUseCase
	MaterialUC     *usecase.MaterialUseCase
	RecipeUC       *usecase.RecipeUseCase
	DistributionUC *inventory.DistributionUseCase
	StockUC        *inventory.StoreInventoryUseCase
	LowStock       *inventory.LowStockEvaluator
	OrderDeduction *inventory.OrderDeductionUseCase
	// OrderQueue nil: los pedidos completados se descuentan dentro de la petición.
	OrderQueue   OrderEnqueuer
	Metrics      *metrics.Metrics
	HealthChecks map[string]HealthCheck
	JWTSecret    string
	Logger       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.HealthChecks))
	app.Get("/metrics", MetricsHandler(deps.Metrics))

	api := app.Group("/api", RequestMetrics(deps.Metrics))

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	stockRoles := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Catálogo
	catalog := NewCatalogHandler(deps.LocationUC, deps.MaterialUC, deps.RecipeUC, deps.Logger)

	locations := protected.Group("/locations")
	locations.Post("/", adminOnly, catalog.CreateLocation)
	locations.Get("/", anyRole, catalog.ListLocations)
	locations.Get("/:id", anyRole, catalog.GetLocation)
	locations.Delete("/:id", adminOnly, catalog.DeleteLocation)

	materials := protected.Group("/materials")
	materials.Post("/", stockRoles, catalog.CreateMaterial)
	materials.Get("/", anyRole, catalog.ListMaterials)
	materials.Get("/:id", anyRole, catalog.GetMaterial)
	materials.Put("/:id/min-level", stockRoles, catalog.UpdateMinLevel)

	recipes := protected.Group("/recipes")
	recipes.Post("/", adminOnly, catalog.CreateRecipe)
	recipes.Get("/", anyRole, catalog.ListRecipes)
	recipes.Get("/menu-item/:menuItemId", anyRole, catalog.GetRecipeByMenuItem)

	// Traslados
	distHandler := NewDistributionHandler(deps.DistributionUC, deps.Logger)
	distributions := protected.Group("/distributions")
	distributions.Post("/", stockRoles, distHandler.Create)
	distributions.Get("/", anyRole, distHandler.List)
	distributions.Get("/summary/stats", anyRole, distHandler.Stats)
	distributions.Get("/:id", anyRole, distHandler.GetByID)
	distributions.Get("/:id/pdf", anyRole, distHandler.SlipPDF)
	distributions.Put("/:id/cancel", stockRoles, distHandler.Cancel)

	// Stock por ubicación
	stockHandler := NewStoreInventoryHandler(deps.StockUC, deps.LowStock, deps.OrderDeduction, deps.OrderQueue, deps.Logger)
	store := protected.Group("/store-inventory")
	store.Post("/inward", stockRoles, stockHandler.Inward)
	store.Post("/adjust", stockRoles, stockHandler.Adjust)
	store.Post("/consume", stockRoles, stockHandler.Consume)
	store.Get("/alerts/low-stock", anyRole, stockHandler.LowStockAlerts)
	store.Post("/alerts/low-stock/evaluate", stockRoles, stockHandler.EvaluateLowStock)
	store.Get("/suggestions", anyRole, stockHandler.ListSuggestions)
	store.Get("/store/:storeId", anyRole, stockHandler.ListInventory)
	store.Get("/store/:storeId/transactions", anyRole, stockHandler.ListTransactions)
	store.Get("/store/:storeId/reconcile", stockRoles, stockHandler.Reconcile)
	store.Post("/orders/completed", anyRole, stockHandler.OrderCompleted)
}
