package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

// ActionLog records one administrative action for later review.
type ActionLog struct {
	bun.BaseModel `bun:"table:action_logs,alias:al"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Action    string    `bun:"action,notnull" json:"action"`
	Payload   string    `bun:"payload" json:"payload,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// KafkaProducer mirrors audit entries to a topic; nil disables mirroring.
type KafkaProducer interface {
	SendMessage(key string, value interface{}) error
}

// Recorder persists action logs. Auditing is best-effort: a failed insert
// or publish is logged and never fails the action being recorded.
type Recorder struct {
	db       *bun.DB
	producer KafkaProducer
	logger   *slog.Logger
}

func NewRecorder(db *bun.DB, producer KafkaProducer, logger *slog.Logger) *Recorder {
	return &Recorder{
		db:       db,
		producer: producer,
		logger:   logger,
	}
}

func (r *Recorder) Record(ctx context.Context, action, payload string) {
	entry := &ActionLog{
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to record action", "action", action, "error", err)
		return
	}

	if r.producer != nil {
		if err := r.producer.SendMessage(action, entry); err != nil {
			r.logger.WarnContext(ctx, "failed to mirror action to kafka", "action", action, "error", err)
		}
	}
}
