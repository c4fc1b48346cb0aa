package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/validation"
)

type handlers struct {
	store     storage.DocumentStore
	validator *validation.Validator
	now       func() time.Time
}

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) getDocument(c *fiber.Ctx) error {
	userID := GetUserID(c)

	doc, err := h.store.Get(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		logger.Error("Failed to read document", "user", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read document",
		})
	}

	return c.JSON(doc)
}

func (h *handlers) putDocument(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var doc models.Document
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document",
		})
	}
	if result := h.validator.ValidateState(doc.Content); result.HasErrors() {
		logger.Warn("Rejected invalid document", "user", userID, "problems", len(result.Errors()))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "Invalid document",
			"problems": result.Errors(),
		})
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = h.now()
	}

	if err := h.store.Upsert(c.UserContext(), userID, doc); err != nil {
		logger.Error("Failed to write document", "user", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to write document",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
