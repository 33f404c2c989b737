package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

type LedgerReader interface {
	Read(ctx context.Context, q usecase.LedgerQuery) (*usecase.LedgerResult, error)
}

type SummaryReader interface {
	Get(ctx context.Context, q usecase.SummaryQuery) (*usecase.DonationSummaryOutput, error)
}

type DonationRecorder interface {
	Execute(ctx context.Context, input usecase.RecordDonationInput) (*entity.Donation, error)
	UpdateStatus(ctx context.Context, organizationID, donationID, status string) (*entity.Donation, error)
}

type DonationHandler struct {
	ledger   LedgerReader
	summary  SummaryReader
	recorder DonationRecorder
	logger   *zap.Logger
}

func NewDonationHandler(ledger LedgerReader, summary SummaryReader, recorder DonationRecorder, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{ledger: ledger, summary: summary, recorder: recorder, logger: logger}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List serves GET /donations?timeframe=&donorId=&campaignId=&all=&limit=.
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	all, _ := strconv.ParseBool(q.Get("all"))
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit must be a non-negative integer")
		return
	}

	res, err := h.ledger.Read(r.Context(), usecase.LedgerQuery{
		OrganizationID: p.OrgID,
		DonorID:        q.Get("donorId"),
		CampaignID:     q.Get("campaignId"),
		Timeframe:      q.Get("timeframe"),
		AllStatuses:    all,
		Limit:          limit,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *DonationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out, err := h.summary.Get(r.Context(), usecase.SummaryQuery{
		OrganizationID: p.OrgID,
		Timeframe:      q.Get("timeframe"),
		DonorID:        q.Get("donorId"),
		CampaignID:     q.Get("campaignId"),
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DonationHandler) Record(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input usecase.RecordDonationInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.OrganizationID = p.OrgID

	donation, err := h.recorder.Execute(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

func (h *DonationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	donation, err := h.recorder.UpdateStatus(r.Context(), p.OrgID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}
