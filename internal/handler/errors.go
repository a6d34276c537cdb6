package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/response"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

// writeError maps domain errors to HTTP responses in one place.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var te *policy.TransitionError
	if errors.As(err, &te) {
		var details interface{}
		if len(te.Missing) > 0 {
			details = map[string]interface{}{"missingActors": te.Missing}
		}
		response.ErrorCode(w, http.StatusBadRequest, string(te.Code), te.Reason, details)
		return
	}

	var ve *xerrors.ValidationError
	if errors.As(err, &ve) {
		response.ErrorCode(w, http.StatusBadRequest, "INCOMPLETE_ACTOR_DATA", ve.Error(),
			map[string]interface{}{"fields": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, xerrors.ErrInvalidInput), errors.Is(err, xerrors.ErrActorNotRequired):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, xerrors.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, xerrors.ErrPolicyNotFound):
		response.Error(w, http.StatusNotFound, "Policy not found")
	case errors.Is(err, xerrors.ErrActorNotFound):
		response.Error(w, http.StatusNotFound, "Actor not found")
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, xerrors.ErrPaymentAlreadyCompleted):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, xerrors.ErrStorageUnavailable):
		logger.Error("storage unavailable", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// performer returns the authenticated user as an activity performer.
func performer(r *http.Request) (auth.User, activity.Performer, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return auth.User{}, activity.Performer{}, false
	}
	return u, activity.User(u.ID), true
}
