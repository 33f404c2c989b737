package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/security"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

type stubTokens struct{}

func (stubTokens) Authenticate(_ context.Context, token string) (*security.Principal, error) {
	if token != "valid" {
		return nil, security.ErrInvalidToken
	}
	return &security.Principal{UserID: "user-1", OrgID: "org-1", SessionID: "sess-1"}, nil
}

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, in usecase.LoginInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, token string) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockDonorManager struct{ mock.Mock }

func (m *MockDonorManager) Create(ctx context.Context, in usecase.CreateDonorInput) (*entity.Donor, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donor), args.Error(1)
}

func (m *MockDonorManager) Get(ctx context.Context, orgID, donorID string) (*entity.Donor, error) {
	args := m.Called(ctx, orgID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donor), args.Error(1)
}

func (m *MockDonorManager) List(ctx context.Context, orgID string, f usecase.ListDonorsFilter) ([]*entity.Donor, error) {
	args := m.Called(ctx, orgID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Donor), args.Error(1)
}

func (m *MockDonorManager) Deactivate(ctx context.Context, orgID, donorID string) (*entity.Donor, error) {
	args := m.Called(ctx, orgID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donor), args.Error(1)
}

func (m *MockDonorManager) ListCommunications(ctx context.Context, orgID, donorID string) ([]*entity.Communication, error) {
	args := m.Called(ctx, orgID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Communication), args.Error(1)
}

type MockInsightReader struct{ mock.Mock }

func (m *MockInsightReader) Get(ctx context.Context, orgID, donorID string) (*entity.Insight, error) {
	args := m.Called(ctx, orgID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Insight), args.Error(1)
}

type MockLapsedLister struct{ mock.Mock }

func (m *MockLapsedLister) List(ctx context.Context, q usecase.LapsedQuery) ([]usecase.LapsedDonor, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.LapsedDonor), args.Error(1)
}

type MockDonorReconciler struct{ mock.Mock }

func (m *MockDonorReconciler) ReconcileDonor(ctx context.Context, orgID, donorID string) (*entity.Donor, error) {
	args := m.Called(ctx, orgID, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donor), args.Error(1)
}

type MockLedgerReader struct{ mock.Mock }

func (m *MockLedgerReader) Read(ctx context.Context, q usecase.LedgerQuery) (*usecase.LedgerResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LedgerResult), args.Error(1)
}

type MockSummaryReader struct{ mock.Mock }

func (m *MockSummaryReader) Get(ctx context.Context, q usecase.SummaryQuery) (*usecase.DonationSummaryOutput, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DonationSummaryOutput), args.Error(1)
}

type MockDonationRecorder struct{ mock.Mock }

func (m *MockDonationRecorder) Execute(ctx context.Context, in usecase.RecordDonationInput) (*entity.Donation, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donation), args.Error(1)
}

func (m *MockDonationRecorder) UpdateStatus(ctx context.Context, orgID, donationID, status string) (*entity.Donation, error) {
	args := m.Called(ctx, orgID, donationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donation), args.Error(1)
}

type MockCommunicationRecorder struct{ mock.Mock }

func (m *MockCommunicationRecorder) Execute(ctx context.Context, in usecase.RecordCommunicationInput) (*entity.Communication, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Communication), args.Error(1)
}

func (m *MockCommunicationRecorder) Send(ctx context.Context, orgID, commID string) (*entity.Communication, error) {
	args := m.Called(ctx, orgID, commID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Communication), args.Error(1)
}

type MockLeadCapturer struct{ mock.Mock }

func (m *MockLeadCapturer) Execute(ctx context.Context, in usecase.CaptureLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeBroker struct{ closed bool }

func (f fakeBroker) IsClosed() bool { return f.closed }
