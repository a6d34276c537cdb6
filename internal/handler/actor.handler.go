package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/response"
	"github.com/arrendix/protecciones/internal/usecase"
)

type ActorHandler struct {
	uc     *usecase.ActorUsecase
	logger *zap.Logger
}

func NewActorHandler(uc *usecase.ActorUsecase, logger *zap.Logger) *ActorHandler {
	return &ActorHandler{uc: uc, logger: logger}
}

// HandleAdd serves POST /policies/{id}/actors/{type}.
func (h *ActorHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_, by, ok := performer(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	policyID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	t, ok := policy.ParseActorType(chi.URLParam(r, "type"))
	if !ok {
		response.Error(w, http.StatusBadRequest, "unknown actor type")
		return
	}

	var in usecase.ActorInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	added, err := h.uc.AddActor(r.Context(), policyID, t, in, by, clientIP(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	body := response.Envelope{"actor": added.Actor, "accessToken": added.AccessToken}
	if added.Warning != "" {
		body["warning"] = added.Warning
	}
	response.JSON(w, http.StatusCreated, body)
}

// HandleComplete serves PUT /policies/{id}/actors/{type}/{actorId}/complete.
func (h *ActorHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	_, by, ok := performer(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	policyID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	actorID, err := idParam(r, "actorId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	t, ok := policy.ParseActorType(chi.URLParam(r, "type"))
	if !ok {
		response.Error(w, http.StatusBadRequest, "unknown actor type")
		return
	}

	done, err := h.uc.CompleteActor(r.Context(), policyID, t, actorID, by, clientIP(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body := response.Envelope{"actor": done.Actor}
	if done.NoOp {
		body["noOp"] = true
	}
	if done.Warning != "" {
		body["warning"] = done.Warning
	}
	response.JSON(w, http.StatusOK, body)
}
