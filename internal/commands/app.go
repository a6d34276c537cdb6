// Package commands holds the cobra commands of the protecciones binary and
// the wiring they share.
package commands

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/completion"
	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/handler"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/pricing"
	"github.com/arrendix/protecciones/internal/repository"
	"github.com/arrendix/protecciones/internal/router"
	"github.com/arrendix/protecciones/internal/usecase"
	"github.com/arrendix/protecciones/internal/workflow"
)

// App is the object graph built on one database handle.
type App struct {
	Activities *activity.Store
	Workflow   *workflow.Service
	Policies   *usecase.PolicyUsecase
	Actors     *usecase.ActorUsecase
	Payments   *usecase.PaymentUsecase
	logger     *zap.Logger
}

func NewApp(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *App {
	policyRepo := repository.NewPolicyRepository(db)
	actorRepo := repository.NewActorRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	activities := activity.NewStore(db)
	gate := completion.NewGate(actorRepo)

	return &App{
		Activities: activities,
		Workflow:   workflow.NewService(policyRepo, policy.NewValidator(), gate, activities, logger),
		Policies:   usecase.NewPolicyUsecase(policyRepo, pricing.NewCalculator(cfg.Pricing), gate, activities, logger),
		Actors:     usecase.NewActorUsecase(policyRepo, actorRepo, activities, logger),
		Payments:   usecase.NewPaymentUsecase(policyRepo, paymentRepo, activities, logger),
		logger:     logger,
	}
}

// Handlers returns the HTTP handlers over the app.
func (a *App) Handlers() router.Handlers {
	return router.Handlers{
		Policies: handler.NewPolicyHandler(a.Policies, a.Workflow, a.logger),
		Actors:   handler.NewActorHandler(a.Actors, a.logger),
		Payments: handler.NewPaymentHandler(a.Payments, a.logger),
	}
}

// NewLogger returns a production logger outside development.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
