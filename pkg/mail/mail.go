// Package mail sends transactional email: verification links, offer
// notifications, demand alerts.
//
//	mail.To("amina@example.com").
//	    Subject("Confirm your AgriConnect email").
//	    Body("<p>Click the link below</p>").
//	    Text("Open the link below").
//	    Send()
//
// Body and Text may both be set; the message then goes out as
// multipart/alternative so plain-text clients keep a readable copy.
// MAIL_DRIVER=log routes messages to the application log instead of
// SMTP, which is what development and CI run with.
package mail

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

type settings struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

func load() settings {
	return settings{
		host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		port:     config.Get("MAIL_PORT", "587"),
		username: config.Get("MAIL_USERNAME", ""),
		password: config.Get("MAIL_PASSWORD", ""),
		from:     config.Get("MAIL_FROM", "hello@agriconnect.ug"),
		fromName: config.Get("MAIL_FROM_NAME", "AgriConnect"),
	}
}

// Message is a fluent email builder.
type Message struct {
	to      []string
	cc      []string
	bcc     []string
	subject string
	html    string
	text    string
}

// To starts a message addressed to the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// CC adds carbon-copy recipients.
func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

// BCC adds blind-carbon-copy recipients.
func (m *Message) BCC(addresses ...string) *Message {
	m.bcc = append(m.bcc, addresses...)
	return m
}

// Subject sets the subject line.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets the HTML part.
func (m *Message) Body(html string) *Message {
	m.html = html
	return m
}

// Text sets the plain-text part.
func (m *Message) Text(text string) *Message {
	m.text = text
	return m
}

// Send delivers the message through the configured driver.
func (m *Message) Send() error {
	if config.Get("MAIL_DRIVER", "smtp") == "log" {
		logger.Info("mail: delivered to log",
			"to", strings.Join(m.to, ", "), "subject", m.subject)
		return nil
	}

	cfg := load()
	if cfg.username == "" {
		return fmt.Errorf("mail: smtp driver needs MAIL_USERNAME")
	}

	recipients := append(append(append([]string{}, m.to...), m.cc...), m.bcc...)
	raw := m.compose(fmt.Sprintf("%s <%s>", cfg.fromName, cfg.from))
	addr := cfg.host + ":" + cfg.port
	auth := smtp.PlainAuth("", cfg.username, cfg.password, cfg.host)

	// Port 465 is implicit TLS; 587 and 25 upgrade via STARTTLS, which
	// net/smtp handles on its own.
	if cfg.port == "465" {
		return m.deliverTLS(addr, auth, cfg.from, recipients, raw, cfg.host)
	}
	if err := smtp.SendMail(addr, auth, cfg.from, recipients, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (m *Message) deliverTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail: mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close() //nolint:errcheck
		return fmt.Errorf("mail: write body: %w", err)
	}
	return w.Close()
}

// compose renders the RFC 2822 wire form. With both parts set the result
// is multipart/alternative, text first so it is the fallback.
func (m *Message) compose(from string) []byte {
	var b strings.Builder
	write := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	write("From", from)
	write("To", strings.Join(m.to, ", "))
	if len(m.cc) > 0 {
		write("Cc", strings.Join(m.cc, ", "))
	}
	write("Subject", m.subject)
	write("MIME-Version", "1.0")

	switch {
	case m.html != "" && m.text != "":
		boundary := altBoundary()
		write("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
		b.WriteString("\r\n")

		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.text)
		b.WriteString("\r\n--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.html)
		b.WriteString("\r\n--" + boundary + "--\r\n")

	case m.html != "":
		write("Content-Type", `text/html; charset="UTF-8"`)
		b.WriteString("\r\n")
		b.WriteString(m.html)

	default:
		write("Content-Type", `text/plain; charset="UTF-8"`)
		b.WriteString("\r\n")
		b.WriteString(m.text)
	}

	return []byte(b.String())
}

func altBoundary() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "agriconnect-alternative"
	}
	return "alt-" + hex.EncodeToString(buf)
}
