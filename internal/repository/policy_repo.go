package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

const (
	policyNumberPrefix   = "POL-"
	policyNumberAttempts = 5
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// PolicyFilter narrows List results.
type PolicyFilter struct {
	Status      policy.Status
	CreatedByID string
	Limit       int
	Offset      int
}

// Create assigns the next policy number for the creation day and inserts
// the policy. A concurrent insert that wins the same number is retried.
func (r *PolicyRepository) Create(ctx context.Context, p *models.Policy) error {
	if p.Status == "" {
		p.Status = policy.StatusDraft
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	for attempt := 0; attempt < policyNumberAttempts; attempt++ {
		number, err := r.NextPolicyNumber(ctx, p.CreatedAt)
		if err != nil {
			return err
		}
		p.PolicyNumber = number

		err = r.db.WithContext(ctx).Create(p).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return storageError("create policy", err)
		}
		p.ID = 0
	}
	return xerrors.ErrPolicyNumberExhausted
}

// NextPolicyNumber returns POL-YYYYMMDD-XXX for the day of at, with XXX one
// above the highest sequence already used that day.
func (r *PolicyRepository) NextPolicyNumber(ctx context.Context, at time.Time) (string, error) {
	prefix := policyNumberPrefix + at.Format("20060102") + "-"

	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("policy_number LIKE ?", prefix+"%").
		Pluck("policy_number", &numbers).Error
	if err != nil {
		return "", storageError("read policy numbers", err)
	}

	next := 1
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err == nil && seq >= next {
			next = seq + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

// FindByID loads a policy without its associations.
func (r *PolicyRepository) FindByID(ctx context.Context, id uint) (*models.Policy, error) {
	var p models.Policy
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrPolicyNotFound
		}
		return nil, storageError("find policy", err)
	}
	return &p, nil
}

// FindDetailed loads a policy with actors and payments.
func (r *PolicyRepository) FindDetailed(ctx context.Context, id uint) (*models.Policy, error) {
	var p models.Policy
	err := r.db.WithContext(ctx).
		Preload("Tenants.References").
		Preload("Tenants.Documents").
		Preload("Landlords.Documents").
		Preload("JointObligors.References").
		Preload("JointObligors.Documents").
		Preload("Avals.References").
		Preload("Avals.Documents").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrPolicyNotFound
		}
		return nil, storageError("find policy", err)
	}
	return &p, nil
}

// List returns policies newest first.
func (r *PolicyRepository) List(ctx context.Context, f PolicyFilter) ([]models.Policy, error) {
	q := r.db.WithContext(ctx).Model(&models.Policy{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CreatedByID != "" {
		q = q.Where("created_by_id = ?", f.CreatedByID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var policies []models.Policy
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(f.Offset).Find(&policies).Error; err != nil {
		return nil, storageError("list policies", err)
	}
	return policies, nil
}

// UpdateStatus writes the given columns of p. Only the workflow calls it.
func (r *PolicyRepository) UpdateStatus(ctx context.Context, p *models.Policy, columns ...string) error {
	res := r.db.WithContext(ctx).Model(p).Select(columns).Updates(p)
	if res.Error != nil {
		return storageError("update policy status", res.Error)
	}
	if res.RowsAffected == 0 {
		return xerrors.ErrPolicyNotFound
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, xerrors.ErrStorageUnavailable, err)
}
