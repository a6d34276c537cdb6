package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/response"
	"github.com/arrendix/protecciones/internal/usecase"
)

type PaymentHandler struct {
	uc     *usecase.PaymentUsecase
	logger *zap.Logger
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, logger: logger}
}

// HandleRecord serves POST /policies/{id}/payments.
func (h *PaymentHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
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
	var in usecase.PaymentInput
	if err := response.Decode(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.uc.RecordPayment(r.Context(), policyID, in, by, clientIP(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body := response.Envelope{"payment": rec.Payment}
	if rec.Warning != "" {
		body["warning"] = rec.Warning
	}
	response.JSON(w, http.StatusCreated, body)
}

func (h *PaymentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	policyID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.uc.ListPayments(r.Context(), policyID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{
		"payments":  list.Payments,
		"completed": list.Completed,
	})
}
