package mail

import (
	"strings"
	"testing"
)

func TestComposeMultipartAlternative(t *testing.T) {
	raw := string(To("amina@example.com").
		Subject("Confirm your AgriConnect email").
		Body("<p>Click</p>").
		Text("Open the link").
		compose("AgriConnect <hello@agriconnect.ug>"))

	if !strings.Contains(raw, "multipart/alternative") {
		t.Error("expected a multipart/alternative content type")
	}
	if !strings.Contains(raw, "text/plain") || !strings.Contains(raw, "Open the link") {
		t.Error("expected the plain-text part to be present")
	}
	if !strings.Contains(raw, "text/html") || !strings.Contains(raw, "<p>Click</p>") {
		t.Error("expected the HTML part to be present")
	}
	// Text part first, so clients that stop at the first part stay readable.
	if strings.Index(raw, "text/plain") > strings.Index(raw, "text/html") {
		t.Error("expected the plain-text part before the HTML part")
	}
}

func TestComposeHTMLOnly(t *testing.T) {
	raw := string(To("amina@example.com").
		Subject("Welcome").
		Body("<h1>Hi</h1>").
		compose("AgriConnect <hello@agriconnect.ug>"))

	if strings.Contains(raw, "multipart") {
		t.Error("single-part message must not be multipart")
	}
	if !strings.Contains(raw, `Content-Type: text/html`) {
		t.Error("expected a text/html content type")
	}
}

func TestSendLogDriver(t *testing.T) {
	t.Setenv("MAIL_DRIVER", "log")

	err := To("amina@example.com").Subject("Welcome").Text("hi").Send()
	if err != nil {
		t.Errorf("log driver must always deliver, got %v", err)
	}
}
