package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/repository"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

const accessTokenTTL = 30 * 24 * time.Hour

var clabePattern = regexp.MustCompile(`^[0-9]{18}$`)

type ActorUsecase struct {
	policies   *repository.PolicyRepository
	actors     *repository.ActorRepository
	activities activity.Logger
	logger     *zap.Logger
	now        func() time.Time
}

func NewActorUsecase(
	policies *repository.PolicyRepository,
	actors *repository.ActorRepository,
	activities activity.Logger,
	logger *zap.Logger,
) *ActorUsecase {
	return &ActorUsecase{
		policies:   policies,
		actors:     actors,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

type ReferenceInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// ActorInput is the data an actor supplies. Fields that do not apply to the
// actor type are ignored.
type ActorInput struct {
	IsCompany        bool                `json:"isCompany"`
	FullName         string              `json:"fullName"`
	CompanyName      string              `json:"companyName"`
	RFC              string              `json:"rfc"`
	CURP             string              `json:"curp"`
	Nationality      string              `json:"nationality"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone"`
	Address          string              `json:"address"`
	EmploymentStatus string              `json:"employmentStatus"`
	Occupation       string              `json:"occupation"`
	EmployerName     string              `json:"employerName"`
	MonthlyIncome    decimal.NullDecimal `json:"monthlyIncome"`

	BankName string `json:"bankName"`
	CLABE    string `json:"clabe"`

	Relationship       string          `json:"relationship"`
	PropertyAddress    string          `json:"propertyAddress"`
	PropertyDeedNumber string          `json:"propertyDeedNumber"`
	PropertyValue      decimal.Decimal `json:"propertyValue"`

	References []ReferenceInput `json:"references"`
}

// AddedActor is the result of AddActor. AccessToken is only ever returned
// here, for the onboarding link sent to the actor.
type AddedActor struct {
	Actor       models.Actor `json:"actor"`
	AccessToken string       `json:"accessToken"`
	Warning     string       `json:"warning,omitempty"`
}

// AddActor attaches a new actor of type t to a policy.
func (u *ActorUsecase) AddActor(ctx context.Context, policyID uint, t policy.ActorType, in ActorInput, by activity.Performer, ip string) (*AddedActor, error) {
	p, err := u.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if !p.RequiresActor(t) {
		return nil, xerrors.ErrActorNotRequired
	}
	if policy.IsTerminal(p.Status) {
		return nil, fmt.Errorf("%w: policy is %s", xerrors.ErrInvalidInput, policy.LabelFor(p.Status))
	}

	actor, _ := models.NewActor(t, policyID)
	apply(actor, in)

	token := uuid.NewString()
	expires := u.now().Add(accessTokenTTL)
	profile := actor.GetProfile()
	profile.AccessToken = token
	profile.TokenExpiresAt = &expires

	refs := make([]*models.Reference, 0, len(in.References))
	for _, ref := range in.References {
		refs = append(refs, &models.Reference{
			Name:         strings.TrimSpace(ref.Name),
			Phone:        strings.TrimSpace(ref.Phone),
			Email:        strings.TrimSpace(ref.Email),
			Relationship: ref.Relationship,
		})
	}
	if err := u.actors.CreateWithReferences(ctx, actor, refs); err != nil {
		return nil, err
	}

	warning := recordActivity(ctx, u.activities, u.logger, activity.Entry{
		PolicyID:    policyID,
		Action:      activity.ActionActorAdded,
		Description: "Se agregó " + string(t),
		PerformedBy: by,
		Details: map[string]interface{}{
			"actorType": string(t),
			"actorId":   actor.GetID(),
		},
		IPAddress: ip,
	})
	return &AddedActor{Actor: actor, AccessToken: token, Warning: warning}, nil
}

// CompletedActor is the result of CompleteActor.
type CompletedActor struct {
	Actor   models.Actor `json:"actor"`
	NoOp    bool         `json:"noOp,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// CompleteActor re-validates the stored actor and sets its
// informationComplete flag. Completing an already complete actor is a no-op.
func (u *ActorUsecase) CompleteActor(ctx context.Context, policyID uint, t policy.ActorType, actorID uint, by activity.Performer, ip string) (*CompletedActor, error) {
	if _, err := u.policies.FindByID(ctx, policyID); err != nil {
		return nil, err
	}
	actor, err := u.actors.Find(ctx, t, policyID, actorID)
	if err != nil {
		return nil, err
	}
	if actor.GetProfile().InformationComplete {
		return &CompletedActor{Actor: actor, NoOp: true}, nil
	}
	if missing := MissingFields(actor); len(missing) > 0 {
		return nil, &xerrors.ValidationError{Entity: string(t), Fields: missing}
	}

	if err := u.actors.MarkComplete(ctx, actor, u.now()); err != nil {
		return nil, err
	}

	warning := recordActivity(ctx, u.activities, u.logger, activity.Entry{
		PolicyID:    policyID,
		Action:      string(t) + "_" + activity.ActionActorCompleted,
		Description: actor.GetProfile().DisplayName() + " completó su información",
		PerformedBy: by,
		Details: map[string]interface{}{
			"actorType": string(t),
			"actorId":   actorID,
		},
		IPAddress: ip,
	})
	return &CompletedActor{Actor: actor, Warning: warning}, nil
}

func apply(actor models.Actor, in ActorInput) {
	p := actor.GetProfile()
	p.IsCompany = in.IsCompany
	p.FullName = strings.TrimSpace(in.FullName)
	p.CompanyName = strings.TrimSpace(in.CompanyName)
	p.RFC = strings.ToUpper(strings.TrimSpace(in.RFC))
	p.CURP = strings.ToUpper(strings.TrimSpace(in.CURP))
	p.Nationality = strings.ToUpper(strings.TrimSpace(in.Nationality))
	if p.Nationality == "" {
		p.Nationality = "MEXICAN"
	}
	p.Email = strings.TrimSpace(in.Email)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Address = strings.TrimSpace(in.Address)
	p.EmploymentStatus = in.EmploymentStatus
	p.Occupation = in.Occupation
	p.EmployerName = in.EmployerName
	p.MonthlyIncome = in.MonthlyIncome

	switch a := actor.(type) {
	case *models.Landlord:
		a.BankName = strings.TrimSpace(in.BankName)
		a.CLABE = strings.TrimSpace(in.CLABE)
	case *models.JointObligor:
		a.Relationship = in.Relationship
	case *models.Aval:
		a.Relationship = in.Relationship
		a.PropertyAddress = strings.TrimSpace(in.PropertyAddress)
		a.PropertyDeedNumber = strings.TrimSpace(in.PropertyDeedNumber)
		a.PropertyValue = in.PropertyValue
	}
}

// MissingFields lists the required fields an actor has not supplied yet.
func MissingFields(actor models.Actor) []string {
	p := actor.GetProfile()
	var missing []string
	need := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}

	if p.IsCompany {
		need(p.CompanyName != "", "companyName")
		need(p.RFC != "", "rfc")
	} else {
		need(p.FullName != "", "fullName")
	}
	need(p.Email != "", "email")
	need(p.Phone != "", "phone")
	need(p.Address != "", "address")

	hasIncome := p.MonthlyIncome.Valid && p.MonthlyIncome.Decimal.IsPositive()
	switch a := actor.(type) {
	case *models.Tenant:
		if !p.IsCompany {
			need(p.EmploymentStatus != "", "employmentStatus")
		}
		need(hasIncome, "monthlyIncome")
		need(len(a.References) > 0, "references")
	case *models.Landlord:
		need(a.BankName != "", "bankName")
		need(clabePattern.MatchString(a.CLABE), "clabe")
	case *models.JointObligor:
		need(hasIncome, "monthlyIncome")
		need(a.Relationship != "", "relationship")
	case *models.Aval:
		need(a.PropertyAddress != "", "propertyAddress")
		need(a.PropertyDeedNumber != "", "propertyDeedNumber")
		need(a.PropertyValue.IsPositive(), "propertyValue")
	}
	return missing
}
