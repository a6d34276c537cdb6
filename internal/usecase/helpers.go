package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
)

const activityWarning = "change saved but the activity log entry could not be written"

// recordActivity writes an entry for a change that already happened. A
// failure is logged and returned as a warning instead of an error.
func recordActivity(ctx context.Context, activities activity.Logger, logger *zap.Logger, e activity.Entry) string {
	if _, err := activities.Record(ctx, e); err != nil {
		logger.Warn("activity not recorded",
			zap.Uint("policy_id", e.PolicyID),
			zap.String("action", e.Action),
			zap.Error(err),
		)
		return activityWarning
	}
	return ""
}
