package sandbox

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartHandler manages the server-side cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

func cartItemPayload(item CartItem) fiber.Map {
	payload := fiber.Map{
		"productId": item.ProductID,
		"quantity":  item.Quantity,
	}
	if item.Product != nil {
		storeName := ""
		if item.Product.Store != nil {
			storeName = item.Product.Store.StoreName
		}
		payload["productName"] = item.Product.Name
		payload["price"] = item.Product.Price
		payload["image"] = item.Product.Image
		payload["storeName"] = storeName
		payload["totalPrice"] = item.Product.Price * float64(item.Quantity)
		payload["bulkThreshold"] = item.Product.BulkThreshold
	}
	return payload
}

// GetCart returns the user's cart lines.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []CartItem
	err := h.db.Preload("Product").Preload("Product.Store").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		payload = append(payload, cartItemPayload(item))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items": payload,
		},
	})
}

type addToCartRequest struct {
	ProductIDs []string `json:"productIds"`
}

// AddToCart adds products to the cart with quantity one each. A product
// already in the cart gets its quantity bumped by one.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.ProductIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "productIds is required")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, raw := range req.ProductIDs {
			productID, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
			}

			var product Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}

			var item CartItem
			err = tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
			if err == gorm.ErrRecordNotFound {
				item = CartItem{UserID: userID, ProductID: productID, Quantity: 1}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}

			item.Quantity++
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "added to cart",
	})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity replaces the quantity of a cart line. Zero or below removes
// the line.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Quantity <= 0 {
		result := h.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{})
		if result.Error != nil {
			return result.Error
		}
		return c.JSON(fiber.Map{
			"success": true,
			"msg":     "removed from cart",
		})
	}

	var item CartItem
	err = h.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}
	if err != nil {
		return err
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "cart updated",
	})
}

// clearCart drops every cart line for the user. Called after a successful
// order.
func clearCart(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error
}
