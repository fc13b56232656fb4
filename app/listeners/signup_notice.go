package listeners

import (
	"fmt"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
)

// signupNotice greets a new user in their in-app feed and, when a
// webhook is configured, pings the ops room so an agent can follow up
// on onboarding.
type signupNotice struct {
	User models.User
}

func (n signupNotice) Via() []string {
	channels := []string{"database"}
	if notify.SlackConfigured() {
		channels = append(channels, "slack")
	}
	return channels
}

func (n signupNotice) ToDatabase() notify.DatabaseData {
	next := "Post a demand or browse listings to find produce near you."
	if n.User.Role == models.RoleFarmer {
		next = "Post your first listing so buyers can find your produce."
	}
	return notify.DatabaseData{
		Type:    "user.welcome",
		Message: fmt.Sprintf("Welcome to AgriConnect, %s. %s", n.User.FirstName, next),
		Data:    map[string]interface{}{"role": n.User.Role},
	}
}

func (n signupNotice) ToSlack() notify.SlackData {
	where := n.User.District
	if where == "" {
		where = "district not set"
	}
	return notify.SlackData{
		Text: "New signup",
		Attachments: []notify.SlackAttachment{{
			Color:  "good",
			Title:  n.User.FullName(),
			Text:   fmt.Sprintf("%s in %s", n.User.Role, where),
			Footer: "agriconnect",
		}},
	}
}
