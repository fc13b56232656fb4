// Package jobs defines the queued background jobs and their registry.
package jobs

import (
	"fmt"
	"net/url"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/mail"
)

// VerificationEmailJob sends the confirm-your-email message issued at
// signup. The token is an AES-GCM blob the verify endpoint decrypts.
type VerificationEmailJob struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

func (j *VerificationEmailJob) Handle() error {
	link := config.AppURL() + "/api/auth/verify?token=" + url.QueryEscape(j.Token)

	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Welcome to AgriConnect. Confirm your email address to activate your account:</p>
<p><a href="%s">Confirm my email</a></p>
<p>The link is valid for 48 hours. If you did not sign up, ignore this message.</p>`,
		j.Name, link)

	text := fmt.Sprintf("Hello %s,\n\nConfirm your AgriConnect email: %s\n\nThe link is valid for 48 hours.",
		j.Name, link)

	return mail.To(j.Email).
		Subject("Confirm your AgriConnect email").
		Body(body).
		Text(text).
		Send()
}
