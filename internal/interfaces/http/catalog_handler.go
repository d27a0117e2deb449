package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// CatalogHandler ubicaciones, materias primas y recetas (protegido).
type CatalogHandler struct {
	locations *usecase.LocationUseCase
	materials *usecase.MaterialUseCase
	recipes   *usecase.RecipeUseCase
	errors    errorMapper
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(
	locations *usecase.LocationUseCase,
	materials *usecase.MaterialUseCase,
	recipes *usecase.RecipeUseCase,
	log zerolog.Logger,
) *CatalogHandler {
	return &CatalogHandler{locations: locations, materials: materials, recipes: recipes, errors: errorMapper{log: log}}
}

// CreateLocation godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Ubicación"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/locations [post]
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.CreateLocationRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.locations.Create(c.UserContext(), companyID, in)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out, "")
}

// GetLocation godoc
// @Summary      Obtener ubicación
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.Envelope
// @Router       /api/locations/{id} [get]
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.locations.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// ListLocations godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.LocationListResponse
// @Router       /api/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	page := pageQuery(c)
	out, err := h.locations.List(c.UserContext(), companyID, page.Limit, page.Offset)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// DeleteLocation godoc
// @Summary      Dar de baja ubicación
// @Description  Solo si todo su stock está en cero.
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/locations/{id} [delete]
func (h *CatalogHandler) DeleteLocation(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	if err := h.locations.Delete(c.UserContext(), companyID, c.Params("id")); err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, nil, "ubicación dada de baja")
}

// CreateMaterial godoc
// @Summary      Crear materia prima
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "Material"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/materials [post]
func (h *CatalogHandler) CreateMaterial(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.CreateMaterialRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.materials.Create(c.UserContext(), companyID, in)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out, "")
}

// GetMaterial godoc
// @Summary      Obtener materia prima
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.Envelope
// @Router       /api/materials/{id} [get]
func (h *CatalogHandler) GetMaterial(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.materials.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// ListMaterials godoc
// @Summary      Listar materias primas
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.MaterialListResponse
// @Router       /api/materials [get]
func (h *CatalogHandler) ListMaterials(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	page := pageQuery(c)
	out, err := h.materials.List(c.UserContext(), companyID, page.Limit, page.Offset)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// UpdateMinLevel godoc
// @Summary      Fijar nivel mínimo
// @Description  min_level null borra el mínimo y el evaluador usa el valor por defecto.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del material"
// @Param        body  body  dto.UpdateMinLevelRequest  true  "Nivel mínimo"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/materials/{id}/min-level [put]
func (h *CatalogHandler) UpdateMinLevel(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.UpdateMinLevelRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.materials.UpdateMinLevel(c.UserContext(), companyID, c.Params("id"), in)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// CreateRecipe godoc
// @Summary      Crear receta
// @Description  Reemplaza la receta activa del mismo ítem del menú.
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecipeRequest  true  "Receta"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/recipes [post]
func (h *CatalogHandler) CreateRecipe(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.CreateRecipeRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.recipes.Create(c.UserContext(), companyID, in)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out, "")
}

// ListRecipes godoc
// @Summary      Listar recetas
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.RecipeListResponse
// @Router       /api/recipes [get]
func (h *CatalogHandler) ListRecipes(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	page := pageQuery(c)
	out, err := h.recipes.List(c.UserContext(), companyID, page.Limit, page.Offset)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}

// GetRecipeByMenuItem godoc
// @Summary      Receta activa de un ítem del menú
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        menuItemId  path  string  true  "ID del ítem del menú"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  dto.Envelope
// @Router       /api/recipes/menu-item/{menuItemId} [get]
func (h *CatalogHandler) GetRecipeByMenuItem(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	out, err := h.recipes.GetActiveByMenuItem(c.UserContext(), companyID, c.Params("menuItemId"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, out, "")
}
