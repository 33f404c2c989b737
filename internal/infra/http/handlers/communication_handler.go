package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

type CommunicationRecorder interface {
	Execute(ctx context.Context, input usecase.RecordCommunicationInput) (*entity.Communication, error)
	Send(ctx context.Context, organizationID, communicationID string) (*entity.Communication, error)
}

type CommunicationHandler struct {
	recorder CommunicationRecorder
	logger   *zap.Logger
}

func NewCommunicationHandler(recorder CommunicationRecorder, logger *zap.Logger) *CommunicationHandler {
	return &CommunicationHandler{recorder: recorder, logger: logger}
}

// Record returns 201 even when an email send failed; the body then carries
// status FAILED.
func (h *CommunicationHandler) Record(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input usecase.RecordCommunicationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.OrganizationID = p.OrgID

	comm, err := h.recorder.Execute(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comm)
}

func (h *CommunicationHandler) Send(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	comm, err := h.recorder.Send(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comm)
}
