package sandbox

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LandownerHandler records partnership enquiries from landowners.
type LandownerHandler struct {
	db       *gorm.DB
	telegram *TelegramService
}

// NewLandownerHandler constructs a LandownerHandler.
func NewLandownerHandler(db *gorm.DB, telegram *TelegramService) *LandownerHandler {
	return &LandownerHandler{db: db, telegram: telegram}
}

// SubmitEnquiry accepts the multipart enquiry form. The document upload is
// optional; only its metadata is recorded.
func (h *LandownerHandler) SubmitEnquiry(c *fiber.Ctx) error {
	enquiry := LandownerEnquiry{
		Name:     c.FormValue("name"),
		Phone:    c.FormValue("phone"),
		District: c.FormValue("district"),
		Acreage:  c.FormValue("acreage"),
		Crop:     c.FormValue("crop"),
		Message:  c.FormValue("message"),
	}

	if enquiry.Name == "" || enquiry.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and phone are required")
	}

	if file, err := c.FormFile("document"); err == nil && file != nil {
		enquiry.DocumentName = file.Filename
		enquiry.DocumentSize = file.Size
	}

	if err := h.db.Create(&enquiry).Error; err != nil {
		return err
	}

	go func(e LandownerEnquiry) {
		if err := h.telegram.NotifyLandownerEnquiry(e); err != nil {
			log.Printf("[Landowner] Telegram notification failed: %v", err)
		}
	}(enquiry)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"msg":     "enquiry received",
	})
}
