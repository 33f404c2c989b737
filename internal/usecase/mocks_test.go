package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/security"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

// MockDonorRepository
type MockDonorRepository struct {
	mock.Mock
}

func (m *MockDonorRepository) Create(ctx context.Context, d *entity.Donor) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDonorRepository) FindByID(ctx context.Context, id string) (*entity.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donor), args.Error(1)
}

func (m *MockDonorRepository) List(ctx context.Context, orgID string, filter entity.DonorFilter) ([]*entity.Donor, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Donor), args.Error(1)
}

func (m *MockDonorRepository) ListIDsByOrganization(ctx context.Context, orgID string) ([]string, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDonorRepository) UpdateStatus(ctx context.Context, id string, status entity.DonorStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDonorRepository) UpdateAggregates(ctx context.Context, id string, a entity.DonorAggregates) error {
	return m.Called(ctx, id, a).Error(0)
}

func (m *MockDonorRepository) ListStaleAggregates(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockDonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, d *entity.Donation) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDonationRepository) FindByID(ctx context.Context, id string) (*entity.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Donation), args.Error(1)
}

func (m *MockDonationRepository) UpdateStatus(ctx context.Context, id string, status entity.DonationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDonationRepository) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Donation), args.Error(1)
}

func (m *MockDonationRepository) Totals(ctx context.Context, filter entity.DonationFilter) (entity.DonationTotals, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(entity.DonationTotals), args.Error(1)
}

func (m *MockDonationRepository) ListCompletedByDonor(ctx context.Context, donorID string) ([]*entity.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListCompletedByOrganization(ctx context.Context, orgID string, before time.Time) ([]*entity.Donation, error) {
	args := m.Called(ctx, orgID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Donation), args.Error(1)
}

// MockCommunicationRepository
type MockCommunicationRepository struct {
	mock.Mock
}

func (m *MockCommunicationRepository) Create(ctx context.Context, c *entity.Communication) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommunicationRepository) FindByID(ctx context.Context, id string) (*entity.Communication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Communication), args.Error(1)
}

func (m *MockCommunicationRepository) ClaimDelivery(ctx context.Context, c *entity.Communication) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommunicationRepository) UpdateDelivery(ctx context.Context, c *entity.Communication) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommunicationRepository) ListByDonor(ctx context.Context, donorID string, limit int) ([]*entity.Communication, error) {
	args := m.Called(ctx, donorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Communication), args.Error(1)
}

func (m *MockCommunicationRepository) FindLatestByDonor(ctx context.Context, donorID string) (*entity.Communication, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Communication), args.Error(1)
}

func (m *MockCommunicationRepository) CountByDonor(ctx context.Context, donorID string) (int, error) {
	args := m.Called(ctx, donorID)
	return args.Int(0), args.Error(1)
}

// MockOrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, o *entity.Organization) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) Rotate(ctx context.Context, id, jti, hash string, expiresAt, seenAt time.Time) error {
	return m.Called(ctx, id, jti, hash, expiresAt, seenAt).Error(0)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockLoginAttemptRepository
type MockLoginAttemptRepository struct {
	mock.Mock
}

func (m *MockLoginAttemptRepository) RecordFailure(ctx context.Context, email, ip string, at time.Time) error {
	return m.Called(ctx, email, ip, at).Error(0)
}

func (m *MockLoginAttemptRepository) CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error) {
	args := m.Called(ctx, email, since)
	return args.Int(0), args.Error(1)
}

func (m *MockLoginAttemptRepository) Clear(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg usecase.OutboundEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockDrafter
type MockDrafter struct {
	mock.Mock
}

func (m *MockDrafter) DraftOutreach(ctx context.Context, req usecase.DraftRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockMeetingScheduler
type MockMeetingScheduler struct {
	mock.Mock
}

func (m *MockMeetingScheduler) ScheduleMeeting(ctx context.Context, req usecase.MeetingRequest) (*usecase.ScheduledMeeting, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ScheduledMeeting), args.Error(1)
}

// MockReconcilePublisher
type MockReconcilePublisher struct {
	mock.Mock
}

func (m *MockReconcilePublisher) PublishDonorReconcile(ctx context.Context, donorID, reason string) error {
	return m.Called(ctx, donorID, reason).Error(0)
}

// MockLeadNotifier
type MockLeadNotifier struct {
	mock.Mock
}

func (m *MockLeadNotifier) NotifyLeadCaptured(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

// MockTokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccess(sessionID, userID, orgID string) (string, time.Time, error) {
	args := m.Called(sessionID, userID, orgID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) IssueRefresh(sessionID, userID, orgID string, expiresAt time.Time) (string, string, error) {
	args := m.Called(sessionID, userID, orgID, expiresAt)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenIssuer) ValidateAccess(token string) (*security.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Principal), args.Error(1)
}

func (m *MockTokenIssuer) ValidateRefresh(token string) (*security.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Principal), args.Error(1)
}

// fakeHasher compares plain text so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(p []byte) (string, error) { return "hash:" + string(p), nil }

func (fakeHasher) Compare(hash string, p []byte) error {
	if hash != "hash:"+string(p) {
		return errWrongPassword
	}
	return nil
}

type recordingMetrics struct {
	donations    []string
	integrations []string
}

func (m *recordingMetrics) DonationRecorded(method, status string) {
	m.donations = append(m.donations, method+"/"+status)
}

func (m *recordingMetrics) IntegrationError(service string) {
	m.integrations = append(m.integrations, service)
}
