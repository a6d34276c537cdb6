// Package activity records the append-only audit trail of policies.
//
// Entries are never updated or deleted. Details are stored verbatim, so any
// key a caller supplies survives for later display.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/models"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

// Common action codes. Status transitions use the lowercased status name.
const (
	ActionCreated          = "created"
	ActionActorAdded       = "actor_added"
	ActionActorCompleted   = "information_completed"
	ActionPaymentRecorded  = "payment_recorded"
	ActionPaymentCompleted = "payment_completed"
)

// Performer identifies who caused an entry. A zero Performer is the system.
type Performer struct {
	ID   string
	Type models.PerformerType
}

// System is the performer for automated actions.
func System() Performer {
	return Performer{Type: models.PerformerSystem}
}

// User is the performer for an authenticated staff or broker user.
func User(id string) Performer {
	return Performer{ID: id, Type: models.PerformerUser}
}

// Entry is the input to Record.
type Entry struct {
	PolicyID    uint
	Action      string
	Description string
	PerformedBy Performer
	Details     map[string]interface{}
	IPAddress   string
}

// Order selects the direction of List.
type Order int

const (
	Oldest Order = iota // creation order
	Newest              // most recent first, for display
)

// Logger appends and reads policy activity.
type Logger interface {
	Record(ctx context.Context, e Entry) (*models.PolicyActivity, error)
	List(ctx context.Context, policyID uint, order Order) ([]models.PolicyActivity, error)
}

// Store is the gorm-backed Logger.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends exactly one entry.
func (s *Store) Record(ctx context.Context, e Entry) (*models.PolicyActivity, error) {
	rec := NewRecord(e)
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("record activity %q: %w: %v", e.Action, xerrors.ErrStorageUnavailable, err)
	}
	return rec, nil
}

// List returns every entry of a policy. Entries sharing a timestamp keep
// insertion order through the id tiebreak.
func (s *Store) List(ctx context.Context, policyID uint, order Order) ([]models.PolicyActivity, error) {
	dir := "ASC"
	if order == Newest {
		dir = "DESC"
	}

	var records []models.PolicyActivity
	err := s.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("created_at " + dir).
		Order("id " + dir).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list activity: %w: %v", xerrors.ErrStorageUnavailable, err)
	}
	return records, nil
}

// NewRecord builds the row for e without persisting it.
func NewRecord(e Entry) *models.PolicyActivity {
	performer := e.PerformedBy
	if performer.Type == "" {
		performer.Type = models.PerformerSystem
	}

	rec := &models.PolicyActivity{
		PolicyID:        e.PolicyID,
		Action:          strings.ToLower(strings.TrimSpace(e.Action)),
		Description:     e.Description,
		PerformedByType: performer.Type,
		Details:         datatypes.JSONMap{},
	}
	if performer.ID != "" {
		id := performer.ID
		rec.PerformedByID = &id
	}
	for k, v := range e.Details {
		rec.Details[k] = storable(v)
	}
	if ip := strings.TrimSpace(e.IPAddress); ip != "" {
		rec.IPAddress = &ip
	}
	return rec
}

// storable keeps v when it encodes as JSON and falls back to its printed
// form otherwise, so odd detail values never fail the insert.
func storable(v interface{}) interface{} {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}
