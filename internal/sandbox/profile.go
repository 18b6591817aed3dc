package sandbox

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileHandler manages profile and address endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

func userPayload(user User) fiber.Map {
	addresses := make([]fiber.Map, 0, len(user.Addresses))
	for _, a := range user.Addresses {
		addresses = append(addresses, addressPayload(a))
	}

	return fiber.Map{
		"_id":         user.ID,
		"fullName":    user.FullName,
		"phoneNumber": user.PhoneNumber,
		"email":       user.Email,
		"addresses":   addresses,
	}
}

func addressPayload(a Address) fiber.Map {
	return fiber.Map{
		"_id":         a.ID,
		"name":        a.Name,
		"addressType": a.AddressType,
		"fullAddress": a.FullAddress,
		"city":        a.City,
		"district":    a.District,
		"state":       a.State,
		"pincode":     a.Pincode,
		"landmark":    a.Landmark,
		"phoneNumber": a.PhoneNumber,
		"isDefault":   a.IsDefault,
	}
}

// GetUser returns the profile with saved addresses.
func (h *ProfileHandler) GetUser(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user User
	if err := h.db.Preload("Addresses").First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    userPayload(user),
	})
}

type updateUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateUser updates the profile name and email.
func (h *ProfileHandler) UpdateUser(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{
		"full_name": req.FullName,
		"email":     req.Email,
	}
	if err := h.db.Model(&User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "profile updated",
	})
}

type addressRequest struct {
	Name        string `json:"name"`
	AddressType string `json:"addressType"`
	FullAddress string `json:"fullAddress"`
	City        string `json:"city"`
	District    string `json:"district"`
	State       string `json:"state"`
	Pincode     int    `json:"pincode"`
	Landmark    string `json:"landmark"`
	PhoneNumber int64  `json:"phoneNumber"`
	IsDefault   bool   `json:"isDefault"`
}

// CreateAddress saves a delivery address. The first address becomes the
// default automatically.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.FullAddress == "" {
		return fiber.NewError(fiber.StatusBadRequest, "full address is required")
	}

	var count int64
	if err := h.db.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}

	address := Address{
		UserID:      userID,
		Name:        req.Name,
		AddressType: req.AddressType,
		FullAddress: req.FullAddress,
		City:        req.City,
		District:    req.District,
		State:       req.State,
		Pincode:     req.Pincode,
		Landmark:    req.Landmark,
		PhoneNumber: req.PhoneNumber,
		IsDefault:   req.IsDefault || count == 0,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"msg":     "address added",
		"data":    addressPayload(address),
	})
}

// UpdateAddress replaces an existing address.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var address Address
	if err := h.db.First(&address, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	address.Name = req.Name
	address.AddressType = req.AddressType
	address.FullAddress = req.FullAddress
	address.City = req.City
	address.District = req.District
	address.State = req.State
	address.Pincode = req.Pincode
	address.Landmark = req.Landmark
	address.PhoneNumber = req.PhoneNumber

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !address.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
			address.IsDefault = true
		}
		return tx.Save(&address).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "address updated",
		"data":    addressPayload(address),
	})
}

// DeleteAddress removes an address.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
	}

	result := h.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "address deleted",
	})
}

// SetDefaultAddress marks one address as default and clears the flag on the
// rest.
func (h *ProfileHandler) SetDefaultAddress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
	}

	var address Address
	if err := h.db.First(&address, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&address).Update("is_default", true).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "default address updated",
	})
}
