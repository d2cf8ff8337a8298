package handlers

import (
	"fmt"
	"strconv"

	"shirtcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// CatalogHandler handles HTTP requests for the shirt catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	catalogRoutes := router.Group("/catalog")
	catalogRoutes.Get("/", h.HandleListCatalog)
	catalogRoutes.Get("/:id", h.HandleGetShirt)
	catalogRoutes.Post("/", h.HandleCreateShirt)
	catalogRoutes.Put("/:id", h.HandleUpdateShirt)
	catalogRoutes.Delete("/:id", h.HandleDeleteShirt)
}

// HandleListCatalog returns the whole catalog, or one page of it when offset and
// limit (or page and per_page) are given.
func (h *CatalogHandler) HandleListCatalog(c *fiber.Ctx) error {
	req := services.NewPageRequest(c.Query("offset"), c.Query("limit"))
	if !req.Paginated() && c.Query("offset") == "" && c.Query("limit") == "" {
		req = services.PageRequestFromPage(c.Query("page"), c.Query("per_page"))
	}

	result, err := h.service.ListCatalog(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, fiber.StatusInternalServerError, "Could not retrieve catalog")
	}
	return c.JSON(result)
}

// HandleGetShirt retrieves a single shirt by its ID.
func (h *CatalogHandler) HandleGetShirt(c *fiber.Ctx) error {
	shirt, err := h.service.GetShirt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "Could not retrieve shirt")
	}
	return c.JSON(shirt)
}

// HandleCreateShirt creates a shirt from form fields and an optional photo file.
func (h *CatalogHandler) HandleCreateShirt(c *fiber.Ctx) error {
	form, err := readShirtForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	photo, closePhoto, err := readPhoto(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo upload"})
	}
	defer closePhoto()

	shirt, err := h.service.CreateShirt(c.UserContext(), form, photo)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "Could not create shirt")
	}
	return c.Status(fiber.StatusCreated).JSON(shirt)
}

// HandleUpdateShirt applies any subset of fields and an optional new photo.
func (h *CatalogHandler) HandleUpdateShirt(c *fiber.Ctx) error {
	form, err := readShirtForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	photo, closePhoto, err := readPhoto(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo upload"})
	}
	defer closePhoto()

	shirt, err := h.service.UpdateShirt(c.UserContext(), c.Params("id"), form, photo)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "Could not update shirt")
	}
	return c.JSON(shirt)
}

// HandleDeleteShirt deletes a shirt and its photo.
func (h *CatalogHandler) HandleDeleteShirt(c *fiber.Ctx) error {
	if err := h.service.DeleteShirt(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "Could not delete shirt")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// readShirtForm reads brand, size and price from a JSON body or from form fields.
// Form values alias the request buffer, so they are copied before they reach a store.
func readShirtForm(c *fiber.Ctx) (services.ShirtForm, error) {
	if !c.Is("json") {
		return services.ShirtForm{
			Brand: utils.CopyString(c.FormValue("brand")),
			Size:  utils.CopyString(c.FormValue("size")),
			Price: utils.CopyString(c.FormValue("price")),
		}, nil
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return services.ShirtForm{}, err
	}
	return services.ShirtForm{
		Brand: formString(body["brand"]),
		Size:  formString(body["size"]),
		Price: formString(body["price"]),
	}, nil
}

func formString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// readPhoto opens the "photo" file part if the request carries one.
func readPhoto(c *fiber.Ctx) (*services.PhotoUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	photo := &services.PhotoUpload{
		Filename: fh.Filename,
		Content:  f,
		BaseURL:  c.BaseURL(),
	}
	return photo, func() { f.Close() }, nil
}
