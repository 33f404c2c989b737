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

type DonorManager interface {
	Create(ctx context.Context, input usecase.CreateDonorInput) (*entity.Donor, error)
	Get(ctx context.Context, organizationID, donorID string) (*entity.Donor, error)
	List(ctx context.Context, organizationID string, f usecase.ListDonorsFilter) ([]*entity.Donor, error)
	Deactivate(ctx context.Context, organizationID, donorID string) (*entity.Donor, error)
	ListCommunications(ctx context.Context, organizationID, donorID string) ([]*entity.Communication, error)
}

type InsightReader interface {
	Get(ctx context.Context, organizationID, donorID string) (*entity.Insight, error)
}

type LapsedLister interface {
	List(ctx context.Context, q usecase.LapsedQuery) ([]usecase.LapsedDonor, error)
}

type DonorReconciler interface {
	ReconcileDonor(ctx context.Context, organizationID, donorID string) (*entity.Donor, error)
}

type DonorHandler struct {
	donors     DonorManager
	insights   InsightReader
	lapsed     LapsedLister
	reconciler DonorReconciler
	logger     *zap.Logger
}

func NewDonorHandler(donors DonorManager, insights InsightReader, lapsed LapsedLister, reconciler DonorReconciler, logger *zap.Logger) *DonorHandler {
	return &DonorHandler{donors: donors, insights: insights, lapsed: lapsed, reconciler: reconciler, logger: logger}
}

func (h *DonorHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var input usecase.CreateDonorInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.OrganizationID = p.OrgID

	donor, err := h.donors.Create(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donor)
}

func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := usecase.ListDonorsFilter{
		Status: q.Get("status"),
		Stage:  q.Get("stage"),
		Tag:    q.Get("tag"),
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit must be a non-negative integer")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "offset must be a non-negative integer")
		return
	}

	donors, err := h.donors.List(r.Context(), p.OrgID, f)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donors": donors})
}

func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	donor, err := h.donors.Get(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

func (h *DonorHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	donor, err := h.donors.Deactivate(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

func (h *DonorHandler) Insights(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	insight, err := h.insights.Get(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (h *DonorHandler) Communications(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	comms, err := h.donors.ListCommunications(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"communications": comms})
}

func (h *DonorHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	donor, err := h.reconciler.ReconcileDonor(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

// Lapsed lists LYBUNT donors. asOf is an optional YYYY-MM-DD date.
func (h *DonorHandler) Lapsed(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	out, err := h.lapsed.List(r.Context(), usecase.LapsedQuery{
		OrganizationID: p.OrgID,
		AsOfDate:       r.URL.Query().Get("asOf"),
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donors": out, "count": len(out)})
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
