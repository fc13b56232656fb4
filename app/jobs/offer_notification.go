package jobs

import (
	"errors"
	"fmt"

	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/phone"
)

// OfferNotificationJob tells a buyer that a farmer answered their demand.
// It delivers by email and the notifications table, plus an outbound
// webhook when OFFER_WEBHOOK_URL is configured.
type OfferNotificationJob struct {
	OfferID uint `json:"offer_id"`
}

func (j *OfferNotificationJob) Handle() error {
	offers := repositories.NewOfferRepository()
	users := repositories.NewUserRepository()

	offer, err := offers.FindByID(j.OfferID)
	if err != nil {
		return fmt.Errorf("jobs: load offer %d: %w", j.OfferID, err)
	}

	buyer, err := users.FindByID(offer.BuyerID)
	if err != nil {
		return fmt.Errorf("jobs: load buyer %d: %w", offer.BuyerID, err)
	}

	farmer, err := users.FindByID(offer.FarmerID)
	if err != nil {
		return fmt.Errorf("jobs: load farmer %d: %w", offer.FarmerID, err)
	}

	notice := offerNotice{
		BuyerName:  buyer.FullName(),
		FarmerName: farmer.FullName(),
		Crop:       offer.Crop,
		Quantity:   offer.Quantity,
		Price:      offer.Price,
		Reference:  offer.Reference,
		Tel:        phone.TelLink(farmer.Phone),
		WhatsApp:   phone.WhatsAppLink(farmer.Phone),
		webhookURL: config.Get("OFFER_WEBHOOK_URL", ""),
	}

	if errs := notify.Send(buyer.Email, notice); len(errs) > 0 {
		return fmt.Errorf("jobs: notify offer %s: %w", offer.Reference, errors.Join(errs...))
	}
	return nil
}

// offerNotice is the multi-channel notification for one sent offer.
type offerNotice struct {
	BuyerName  string
	FarmerName string
	Crop       string
	Quantity   float64
	Price      float64
	Reference  string
	Tel        string
	WhatsApp   string
	webhookURL string
}

func (n offerNotice) Via() []string {
	channels := []string{"mail", "database"}
	if n.webhookURL != "" {
		channels = append(channels, "webhook")
	}
	return channels
}

func (n offerNotice) ToMail() notify.MailData {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>%s has sent you an offer for your <strong>%s</strong> demand:
%.0f at UGX %.0f per unit (ref %s).</p>
<p>Reach them directly: <a href="%s">call</a> or <a href="%s">WhatsApp</a>.</p>`,
		n.BuyerName, n.FarmerName, n.Crop, n.Quantity, n.Price, n.Reference, n.Tel, n.WhatsApp)

	return notify.MailData{
		Subject: fmt.Sprintf("New offer for your %s demand", n.Crop),
		Body:    body,
		Text: fmt.Sprintf("%s sent you an offer for %s: %.0f at UGX %.0f per unit (ref %s). WhatsApp: %s",
			n.FarmerName, n.Crop, n.Quantity, n.Price, n.Reference, n.WhatsApp),
	}
}

func (n offerNotice) ToDatabase() notify.DatabaseData {
	return notify.DatabaseData{
		Type:    "offer.sent",
		Message: fmt.Sprintf("%s sent an offer for %s (ref %s)", n.FarmerName, n.Crop, n.Reference),
		Data: map[string]interface{}{
			"reference": n.Reference,
			"crop":      n.Crop,
			"quantity":  n.Quantity,
			"price":     n.Price,
			"whatsapp":  n.WhatsApp,
		},
	}
}

func (n offerNotice) ToWebhook() notify.WebhookData {
	return notify.WebhookData{
		URL: n.webhookURL,
		Payload: map[string]interface{}{
			"event":     "offer.sent",
			"reference": n.Reference,
			"crop":      n.Crop,
			"farmer":    n.FarmerName,
			"buyer":     n.BuyerName,
			"quantity":  n.Quantity,
			"price":     n.Price,
		},
	}
}
