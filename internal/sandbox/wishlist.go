package sandbox

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistHandler manages liked products.
type WishlistHandler struct {
	db *gorm.DB
}

// NewWishlistHandler constructs a WishlistHandler.
func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{db: db}
}

// List returns the user's liked products with populated product references.
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var entries []WishlistEntry
	err := h.db.Preload("Product").Preload("Product.Store").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		item := fiber.Map{"productId": entry.ProductID}
		if entry.Product != nil {
			item["productId"] = productPayload(*entry.Product)
			item["category"] = entry.Product.Category
		}
		payload = append(payload, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

type addWishlistRequest struct {
	ProductID string `json:"productId"`
}

// Add likes a product. Liking twice is a no-op.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addWishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	var existing WishlistEntry
	err = h.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		entry := WishlistEntry{UserID: userID, ProductID: productID}
		if err := h.db.Create(&entry).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "added to wishlist",
	})
}

// Remove unlikes a product.
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	result := h.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistEntry{})
	if result.Error != nil {
		return result.Error
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "removed from wishlist",
	})
}
