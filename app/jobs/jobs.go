package jobs

import "github.com/agriconnect-ug/agriconnect/pkg/queue"

// Register makes every job type known to the queue so workers can
// deserialize payloads. Called once at boot, before StartWorkers.
func Register() {
	queue.Register("*jobs.VerificationEmailJob", func() queue.Job { return &VerificationEmailJob{} })
	queue.Register("*jobs.OfferNotificationJob", func() queue.Job { return &OfferNotificationJob{} })
}
