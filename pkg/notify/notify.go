// Package notify fans one notification out over its channels: email,
// the in-app notifications table, Slack for the ops room and outbound
// partner webhooks.
//
// A notification names its channels in Via and carries one payload
// method per channel:
//
//	type signupNotice struct{ User models.User }
//
//	func (n signupNotice) Via() []string { return []string{"slack", "database"} }
//	func (n signupNotice) ToSlack() notify.SlackData {
//	    return notify.SlackData{Text: "New farmer: " + n.User.FullName()}
//	}
//	func (n signupNotice) ToDatabase() notify.DatabaseData {
//	    return notify.DatabaseData{Type: "user.welcome", Message: "Welcome to AgriConnect"}
//	}
//
//	notify.SendAsync(user.Email, signupNotice{User: user})
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/pkg/httpx"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/mail"
	"github.com/agriconnect-ug/agriconnect/pkg/workerpool"
)

// Notification is implemented by every notification type.
type Notification interface {
	// Via lists the channels to deliver on. Known names are "mail",
	// "slack", "webhook" and "database".
	Via() []string
}

// Mailable notifications can deliver on the mail channel.
type Mailable interface{ ToMail() MailData }

// Slackable notifications can deliver on the slack channel.
type Slackable interface{ ToSlack() SlackData }

// Webhookable notifications can deliver on the webhook channel.
type Webhookable interface{ ToWebhook() WebhookData }

// Databaseable notifications can deliver on the database channel.
type Databaseable interface{ ToDatabase() DatabaseData }

// MailData is the mail channel payload.
type MailData struct {
	To      string // defaults to the notifiable address
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// SlackData is the Slack channel payload, posted to an incoming webhook.
type SlackData struct {
	WebhookURL  string // defaults to the URL given to SetSlackWebhook
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is one attachment block in a Slack message.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData is the webhook channel payload: an arbitrary JSON document
// POSTed to URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// DatabaseData is the database channel payload, stored as one row in the
// notifications table.
type DatabaseData struct {
	Type    string
	Message string
	Data    interface{} // marshalled to JSON
}

// deliverFunc sends one notification over one channel. Each channel
// asserts its payload interface itself so Send stays generic.
type deliverFunc func(address string, n Notification) error

var channels = map[string]deliverFunc{
	"mail":     deliverMail,
	"slack":    deliverSlack,
	"webhook":  deliverWebhook,
	"database": deliverDatabase,
}

// pool bounds concurrent async deliveries so a burst of signups cannot
// spawn unbounded goroutines against SMTP or Slack.
var pool = workerpool.New(16)

// Send delivers n over every channel in Via and collects the failures.
// Channels are independent: one failing does not stop the rest.
func Send(address string, n Notification) []error {
	var errs []error
	for _, name := range n.Via() {
		if err := deliver(address, name, n); err != nil {
			logger.Error("notify: delivery failed", "channel", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync queues the delivery on the pool and returns immediately.
// Failures are logged, not returned.
func SendAsync(address string, n Notification) {
	err := pool.Submit(func() {
		Send(address, n) //nolint:errcheck
	})
	if err != nil {
		// Pool saturated or shut down. Deliver inline rather than drop.
		Send(address, n) //nolint:errcheck
	}
}

// Shutdown waits for in-flight async deliveries to finish. Call on
// server stop, after the HTTP listener has drained.
func Shutdown() { pool.Shutdown() }

func deliver(address, name string, n Notification) error {
	fn, ok := channels[name]
	if !ok {
		return fmt.Errorf("notify: unknown channel %q", name)
	}
	return fn(address, n)
}

func deliverMail(address string, n Notification) error {
	m, ok := n.(Mailable)
	if !ok {
		return fmt.Errorf("notify: %T does not implement Mailable", n)
	}
	d := m.ToMail()

	to := d.To
	if to == "" {
		to = address
	}
	body := d.Body
	if body == "" {
		body = d.Text
	}
	return mail.To(to).Subject(d.Subject).Body(body).Send()
}

var slackWebhook string

// SetSlackWebhook sets the default incoming-webhook URL for the slack
// channel. Call once at boot; an empty URL leaves the channel
// unconfigured.
func SetSlackWebhook(url string) { slackWebhook = url }

// SlackConfigured reports whether a default Slack webhook is set.
// Notifications consult it when deciding their Via channels.
func SlackConfigured() bool { return slackWebhook != "" }

// slackMessage is the incoming-webhook wire format.
type slackMessage struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func deliverSlack(_ string, n Notification) error {
	s, ok := n.(Slackable)
	if !ok {
		return fmt.Errorf("notify: %T does not implement Slackable", n)
	}
	d := s.ToSlack()

	url := d.WebhookURL
	if url == "" {
		url = slackWebhook
	}
	if url == "" {
		return fmt.Errorf("notify: slack webhook URL not configured")
	}

	msg := slackMessage{Text: d.Text, Attachments: d.Attachments}
	err := httpx.PostJSON(context.Background(), url, msg, nil, httpx.Policy{
		Timeout:  5 * time.Second,
		Attempts: 3,
		Backoff:  time.Second,
	})
	if err != nil {
		return fmt.Errorf("notify: slack: %w", err)
	}
	return nil
}

func deliverWebhook(_ string, n Notification) error {
	wh, ok := n.(Webhookable)
	if !ok {
		return fmt.Errorf("notify: %T does not implement Webhookable", n)
	}
	d := wh.ToWebhook()
	if d.URL == "" {
		return fmt.Errorf("notify: webhook URL is empty")
	}

	err := httpx.PostJSON(context.Background(), d.URL, d.Payload, d.Headers, httpx.Policy{
		Timeout:  10 * time.Second,
		Attempts: 3,
		Backoff:  time.Second,
	})
	if err != nil {
		return fmt.Errorf("notify: webhook: %w", err)
	}
	return nil
}

// Record is one row in the notifications table. The database channel
// writes rows; GET /api/notifications reads them back for the signed-in
// user.
type Record struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Notifiable string     `gorm:"size:255;index" json:"notifiable"`
	Type       string     `gorm:"size:255;not null;index" json:"type"`
	Message    string     `gorm:"type:text" json:"message"`
	Data       string     `gorm:"type:text" json:"data"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Record) TableName() string { return "notifications" }

var recordDB *gorm.DB

// UseDB enables the database channel. Call once at boot:
//
//	notify.UseDB(database.DB)
func UseDB(db *gorm.DB) {
	recordDB = db
	db.AutoMigrate(&Record{}) //nolint:errcheck
}

func deliverDatabase(address string, n Notification) error {
	d, ok := n.(Databaseable)
	if !ok {
		return fmt.Errorf("notify: %T does not implement Databaseable", n)
	}
	if recordDB == nil {
		return fmt.Errorf("notify: database channel not configured, call notify.UseDB")
	}
	data := d.ToDatabase()

	rec := Record{
		Notifiable: address,
		Type:       data.Type,
		Message:    data.Message,
	}
	if data.Data != nil {
		raw, err := json.Marshal(data.Data)
		if err != nil {
			return fmt.Errorf("notify: marshal notification data: %w", err)
		}
		rec.Data = string(raw)
	}

	if err := recordDB.Create(&rec).Error; err != nil {
		return fmt.Errorf("notify: store notification: %w", err)
	}
	return nil
}
