package usecase_test

import (
	"errors"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

const (
	orgID   = "org-1"
	donorID = "donor-1"
)

var (
	errDB            = errors.New("connection reset by peer")
	errWrongPassword = errors.New("password mismatch")
	fixedNow         = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
)

func fixedClock() usecase.FixedClock {
	return usecase.FixedClock{T: fixedNow}
}

func testOrg(tz string) *entity.Organization {
	return &entity.Organization{ID: orgID, Name: "Friends of the Library", Timezone: tz}
}

func testDonor() *entity.Donor {
	return &entity.Donor{
		ID:             donorID,
		OrganizationID: orgID,
		Name:           "Ada Lovelace",
		Email:          "ada@example.org",
		Stage:          entity.StageCultivation,
		Status:         entity.DonorActive,
	}
}

func completedGift(id, donor string, cents int64, at time.Time) *entity.Donation {
	return &entity.Donation{
		ID:             id,
		OrganizationID: orgID,
		DonorID:        donor,
		AmountCents:    cents,
		Currency:       "USD",
		DonatedAt:      at,
		PaymentMethod:  entity.PaymentCreditCard,
		Status:         entity.DonationCompleted,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
