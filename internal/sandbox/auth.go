package sandbox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inspitereno-lang/entebhoomi/internal/config"
)

const otpTTL = 10 * time.Minute

// AuthHandler bundles dependencies for OTP login endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type requestOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// RequestOTP issues a one-time login code for the phone number. The sandbox
// has no SMS provider so the code is echoed back in the response.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PhoneNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number is required")
	}

	code, err := generateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate OTP")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash OTP")
	}

	verification := OTPVerification{
		Phone:     req.PhoneNumber,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(otpTTL),
	}

	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "OTP sent",
		"otp":     code,
	})
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

// VerifyOTP exchanges a phone/OTP pair for a bearer token, creating the user
// on first login.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PhoneNumber == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number and OTP are required")
	}

	var verification OTPVerification
	err := h.db.Where("phone = ? AND used = ? AND expires_at > ?", req.PhoneNumber, false, time.Now()).
		Order("created_at DESC").
		First(&verification).Error
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired OTP")
	}

	if bcrypt.CompareHashAndPassword([]byte(verification.CodeHash), []byte(req.OTP)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired OTP")
	}

	verification.Used = true
	if err := h.db.Save(&verification).Error; err != nil {
		return err
	}

	var user User
	err = h.db.Preload("Addresses").Where("phone_number = ?", req.PhoneNumber).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = User{PhoneNumber: req.PhoneNumber}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	token, err := GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "login successful",
		"data":    userPayload(user),
		"token":   token,
	})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
