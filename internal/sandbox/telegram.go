package sandbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService sends admin notifications for events the team has to act
// on by hand: bulk purchase orders and landowner enquiries.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService. Empty credentials make
// every notification a no-op.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// NotifyPurchaseOrder tells the admin chat about a bulk purchase order that
// needs a follow-up call.
func (s *TelegramService) NotifyPurchaseOrder(order Order, userPhone string) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x ₹%.2f\n",
			i+1, item.ProductName, item.Quantity, item.Price))
	}

	message := fmt.Sprintf(`<b>🌾 BULK PURCHASE ORDER</b>
<b>📋 Order:</b> %s
<b>📞 Phone:</b> %s
<b>🚚 Transport:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Bulk amount:</b> ₹%.2f`,
		order.OrderCode,
		userPhone,
		order.TransportMode,
		itemsList.String(),
		order.BulkAmount,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifyLandownerEnquiry tells the admin chat about a new partnership lead.
func (s *TelegramService) NotifyLandownerEnquiry(enquiry LandownerEnquiry) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>🤝 LANDOWNER ENQUIRY</b>
<b>👤 Name:</b> %s
<b>📞 Phone:</b> %s
<b>📍 District:</b> %s
<b>🌱 Crop:</b> %s
<b>📐 Acreage:</b> %s`,
		enquiry.Name,
		enquiry.Phone,
		enquiry.District,
		enquiry.Crop,
		enquiry.Acreage,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
