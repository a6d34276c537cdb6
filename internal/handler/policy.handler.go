package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/response"
	"github.com/arrendix/protecciones/internal/usecase"
	"github.com/arrendix/protecciones/internal/workflow"
)

type PolicyHandler struct {
	uc       *usecase.PolicyUsecase
	workflow *workflow.Service
	logger   *zap.Logger
}

func NewPolicyHandler(uc *usecase.PolicyUsecase, wf *workflow.Service, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{uc: uc, workflow: wf, logger: logger}
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HandleUpdateStatus serves PUT /policies/{id}/status.
func (h *PolicyHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, by, ok := performer(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req statusRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		response.ErrorCode(w, http.StatusBadRequest, string(policy.CodeInvalidStatus), "status is required", nil)
		return
	}

	target, _ := policy.ParseStatus(req.Status)
	if d := auth.Authorize(user.Role, auth.CapabilityForTransition(target)); !d.Allowed {
		response.Error(w, http.StatusForbidden, d.Reason)
		return
	}

	res, err := h.workflow.Transition(r.Context(), workflow.Request{
		PolicyID:    id,
		Status:      policy.Status(req.Status),
		PerformedBy: by,
		Reason:      req.Reason,
		IPAddress:   clientIP(r),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	body := response.Envelope{"policy": res.Policy, "activity": res.Activity}
	if res.NoOp {
		body["noOp"] = true
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	response.JSON(w, http.StatusOK, body)
}

// HandleCreate serves POST /policies.
func (h *PolicyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, by, ok := performer(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var in usecase.CreatePolicyInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.uc.CreatePolicy(r.Context(), in, by, clientIP(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body := response.Envelope{"policy": created.Policy}
	if created.Warning != "" {
		body["warning"] = created.Warning
	}
	response.JSON(w, http.StatusCreated, body)
}

// HandleList serves GET /policies?status=&limit=&offset=.
func (h *PolicyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	policies, err := h.uc.ListPolicies(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{"policies": policies})
}

func (h *PolicyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.uc.GetPolicy(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{"policy": p})
}

func (h *PolicyHandler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.uc.Activities(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{"activities": list})
}

func (h *PolicyHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.uc.Completion(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{
		"completion": report,
		"satisfied":  report.Satisfied(),
	})
}

// HandleStatuses serves the status registry for display.
func (h *PolicyHandler) HandleStatuses(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Envelope{"statuses": policy.Describe()})
}
