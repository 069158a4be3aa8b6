package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusPublished = "PUBLISHED"
)

// Event is one row of the per-service outbox table. Rows are append-only;
// the only mutation is the PENDING -> PUBLISHED status flip.
type Event struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateType string    `gorm:"type:varchar(40);not null;index"`
	AggregateID   string    `gorm:"type:varchar(80);not null"`
	EventType     string    `gorm:"type:varchar(80);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (Event) TableName() string { return "outbox_events" }

// Store provides outbox persistence. Append must be called with the same
// transaction handle as the business write it describes.
type Store interface {
	Append(tx *gorm.DB, event *Event) error
	FindPending(ctx context.Context) ([]Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append inserts the event using the caller's transaction so the event and
// the state change it describes commit or roll back together.
func (s *GormStore) Append(tx *gorm.DB, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = StatusPending
	}
	return tx.Create(event).Error
}

// FindPending returns all PENDING events oldest first per aggregate. No
// ordering is guaranteed across aggregates.
func (s *GormStore) FindPending(ctx context.Context) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("aggregate_id, created_at").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkPublished flips the event to PUBLISHED in its own transaction. Safe to
// call more than once for the same id.
func (s *GormStore) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", StatusPublished).Error
}
