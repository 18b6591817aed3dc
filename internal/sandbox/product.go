package sandbox

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultProductPageSize = 50

// ProductHandler serves the public catalog endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

func productPayload(p Product) fiber.Map {
	storeName := ""
	if p.Store != nil {
		storeName = p.Store.StoreName
	}

	return fiber.Map{
		"_id":           p.ID,
		"productName":   p.Name,
		"category":      p.Category,
		"price":         p.Price,
		"image":         p.Image,
		"storeName":     storeName,
		"bulkThreshold": p.BulkThreshold,
		"stock":         p.Stock,
	}
}

func storePayload(s VendorStore) fiber.Map {
	return fiber.Map{
		"_id":       s.ID,
		"storeName": s.StoreName,
		"district":  s.District,
		"image":     s.Image,
	}
}

// ListProducts lists catalog products, newest first.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	limit := defaultProductPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var products []Product
	if err := h.db.Preload("Store").Order("created_at DESC").Limit(limit).Find(&products).Error; err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		payload = append(payload, productPayload(p))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// GetProduct returns a single product by id.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product Product
	if err := h.db.Preload("Store").First(&product, "id = ?", productID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    productPayload(product),
	})
}

// ListStores lists vendor stores.
func (h *ProductHandler) ListStores(c *fiber.Ctx) error {
	var stores []VendorStore
	if err := h.db.Order("store_name ASC").Find(&stores).Error; err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(stores))
	for _, s := range stores {
		payload = append(payload, storePayload(s))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// GetStore returns one store with its product selection.
func (h *ProductHandler) GetStore(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid store id")
	}

	var store VendorStore
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "store not found")
	}

	var products []Product
	if err := h.db.Preload("Store").Where("store_id = ?", storeID).Find(&products).Error; err != nil {
		return err
	}

	productList := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		productList = append(productList, productPayload(p))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"store":    storePayload(store),
			"products": productList,
		},
	})
}
