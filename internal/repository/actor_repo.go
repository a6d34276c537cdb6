package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

type ActorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

// Create inserts a new actor row.
func (r *ActorRepository) Create(ctx context.Context, actor models.Actor) error {
	if err := r.db.WithContext(ctx).Create(actor).Error; err != nil {
		return storageError("create "+string(actor.ActorType()), err)
	}
	return nil
}

// CreateWithReferences inserts a new actor and its references in one
// transaction. On failure no row of either is left behind.
func (r *ActorRepository) CreateWithReferences(ctx context.Context, actor models.Actor, refs []*models.Reference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(actor).Error; err != nil {
			return storageError("create "+string(actor.ActorType()), err)
		}
		for _, ref := range refs {
			ref.ActorID = actor.GetID()
			ref.ActorType = string(actor.ActorType())
			if err := tx.Create(ref).Error; err != nil {
				return storageError("create reference", err)
			}
		}
		return nil
	})
}

// Find loads one actor of type t belonging to policyID, with its references
// when the actor type has them.
func (r *ActorRepository) Find(ctx context.Context, t policy.ActorType, policyID, actorID uint) (models.Actor, error) {
	actor, ok := models.NewActor(t, policyID)
	if !ok {
		return nil, xerrors.ErrActorNotFound
	}

	q := r.db.WithContext(ctx)
	if t != policy.ActorLandlord {
		q = q.Preload("References")
	}
	err := q.Where("policy_id = ?", policyID).First(actor, actorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrActorNotFound
		}
		return nil, storageError("find "+string(t), err)
	}
	return actor, nil
}

// MarkComplete flips informationComplete and stamps completedAt.
func (r *ActorRepository) MarkComplete(ctx context.Context, actor models.Actor, at time.Time) error {
	profile := actor.GetProfile()
	profile.InformationComplete = true
	profile.CompletedAt = &at

	res := r.db.WithContext(ctx).
		Model(actor).
		Select("information_complete", "completed_at").
		Updates(map[string]interface{}{
			"information_complete": true,
			"completed_at":         at,
		})
	if res.Error != nil {
		return storageError("complete "+string(actor.ActorType()), res.Error)
	}
	if res.RowsAffected == 0 {
		return xerrors.ErrActorNotFound
	}
	return nil
}

// CompletionFlags returns, per actor type, the informationComplete flag of
// every actor of that type attached to the policy. Types with no actors are
// absent from the map.
func (r *ActorRepository) CompletionFlags(ctx context.Context, policyID uint) (map[policy.ActorType][]bool, error) {
	flags := make(map[policy.ActorType][]bool)
	for _, t := range policy.ActorTypes() {
		model, _ := models.NewActor(t, policyID)

		var values []bool
		err := r.db.WithContext(ctx).
			Model(model).
			Where("policy_id = ?", policyID).
			Order("id ASC").
			Pluck("information_complete", &values).Error
		if err != nil {
			return nil, storageError("read "+string(t)+" completion", err)
		}
		if len(values) > 0 {
			flags[t] = values
		}
	}
	return flags, nil
}
