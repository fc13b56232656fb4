package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

// FailedJobRecord is a failed job row in the failed_jobs table, kept so
// an operator can inspect and re-dispatch jobs after a deploy.
type FailedJobRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	JobType   string    `gorm:"size:255;not null;index"`
	Payload   string    `gorm:"type:text;not null"`
	LastError string    `gorm:"type:text"`
	Attempts  int       `gorm:"not null;default:0"`
	FailedAt  time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// failedDB, when set, mirrors parked jobs to the database. Nil keeps
// failures in memory only.
var failedDB *gorm.DB

// UseDB persists failed jobs to db. Called once at boot, after
// database.Connect, and creates the failed_jobs table on first use.
func UseDB(db *gorm.DB) {
	failedDB = db
	if err := db.AutoMigrate(&FailedJobRecord{}); err != nil {
		logger.Error("queue: migrate failed_jobs", "error", err)
	}
}

// park records a job that exhausted its retries: always in memory, and
// in the failed_jobs table when UseDB was called.
func (m *manager) park(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: typeName, Job: job, Err: lastErr, Attempts: attempts, FailedAt: time.Now(),
	})
	m.mu.Unlock()

	if failedDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		// %q keeps the placeholder valid JSON whatever the error says.
		payload = []byte(fmt.Sprintf(`{"unserializable": %q}`, err.Error()))
	}

	record := FailedJobRecord{
		JobType:   typeName,
		Attempts:  attempts,
		Payload:   string(payload),
		LastError: lastErr.Error(),
		FailedAt:  time.Now(),
	}
	if err := failedDB.Create(&record).Error; err != nil {
		logger.Error("queue: could not persist parked job", "type", typeName, "error", err)
	}
}
