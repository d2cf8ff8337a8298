package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"shirtcatalog/internal/photostore"

	"github.com/gofiber/fiber/v2"
)

// PhotoOpener opens stored photos by name.
type PhotoOpener interface {
	Open(ctx context.Context, name string) (*os.File, error)
}

// PhotoHandler serves stored photos.
type PhotoHandler struct {
	photos PhotoOpener
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos PhotoOpener) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// RegisterRoutes registers GET /uploads/:name.
func (h *PhotoHandler) RegisterRoutes(router fiber.Router) {
	router.Get(photostore.URLPrefix+":name", h.HandleGetPhoto)
}

// HandleGetPhoto streams the raw photo bytes.
func (h *PhotoHandler) HandleGetPhoto(c *fiber.Ctx) error {
	name := c.Params("name")
	f, err := h.photos.Open(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) || errors.Is(err, photostore.ErrInvalidName) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return respondError(c, err, fiber.StatusInternalServerError, "Could not read photo")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return respondError(c, err, fiber.StatusInternalServerError, "Could not read photo")
	}
	if ext := filepath.Ext(name); ext != "" {
		c.Type(ext)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	return c.SendStream(f, int(info.Size()))
}
