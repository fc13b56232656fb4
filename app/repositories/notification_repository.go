package repositories

import (
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// NotificationRepository reads the rows the notify database channel
// writes. Rows are keyed by email address because deliveries happen off
// the request path, where only the address is known.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// ForUser returns the newest notifications for an address, capped at 50.
func (r *NotificationRepository) ForUser(email string) ([]notify.Record, error) {
	var rows []notify.Record
	err := orm.DB().Model(&notify.Record{}).
		Where("notifiable = ?", email).
		Order("created_at DESC").
		Limit(50).
		Get(&rows)
	return rows, err
}

// MarkAllRead stamps read_at on every unread row for the address and
// reports how many were stamped.
func (r *NotificationRepository) MarkAllRead(email string) (int64, error) {
	return orm.DB().Model(&notify.Record{}).
		Where("notifiable = ? AND read_at IS NULL", email).
		UpdateAll(map[string]interface{}{"read_at": time.Now()})
}
