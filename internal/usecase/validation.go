package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/xavierca1/donor-crm/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

func ValidateCreateDonorInput(input CreateDonorInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if input.Phone != "" && !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if input.Stage != "" && !entity.DonorStage(input.Stage).Valid() {
		errors = append(errors, ValidationError{"stage", "is invalid"})
	}

	return errors
}

func ValidateRecordDonationInput(input RecordDonationInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.DonorID) == "" {
		errors = append(errors, ValidationError{"donor_id", "is required"})
	}
	if input.AmountCents <= 0 {
		errors = append(errors, ValidationError{"amount_cents", "must be greater than zero"})
	}
	if input.Currency != "" && !currencyPattern.MatchString(input.Currency) {
		errors = append(errors, ValidationError{"currency", "must be a 3-letter ISO code"})
	}
	if input.PaymentMethod == "" {
		errors = append(errors, ValidationError{"payment_method", "is required"})
	} else if !entity.PaymentMethod(input.PaymentMethod).Valid() {
		errors = append(errors, ValidationError{"payment_method", "is invalid"})
	}
	if input.Status != "" && !entity.DonationStatus(input.Status).Valid() {
		errors = append(errors, ValidationError{"status", "is invalid"})
	}
	if input.Date != "" {
		if _, err := parseDate(input.Date, time.UTC); err != nil {
			errors = append(errors, ValidationError{"date", "must be a valid date (YYYY-MM-DD or RFC3339)"})
		}
	}

	return errors
}

func ValidateRecordCommunicationInput(input RecordCommunicationInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.DonorID) == "" {
		errors = append(errors, ValidationError{"donor_id", "is required"})
	}
	if input.Type == "" {
		errors = append(errors, ValidationError{"type", "is required"})
	} else if !entity.CommunicationType(input.Type).Valid() {
		errors = append(errors, ValidationError{"type", "is invalid"})
	}
	if input.Direction != "" && input.Direction != string(entity.Inbound) && input.Direction != string(entity.Outbound) {
		errors = append(errors, ValidationError{"direction", "must be INBOUND or OUTBOUND"})
	}
	if input.Status == "" {
		errors = append(errors, ValidationError{"status", "is required"})
	} else if input.Status != string(entity.CommDraft) && input.Status != string(entity.CommSent) {
		errors = append(errors, ValidationError{"status", "must be DRAFT or SENT"})
	}
	if input.ScheduledAt != "" {
		if _, err := time.Parse(time.RFC3339, input.ScheduledAt); err != nil {
			errors = append(errors, ValidationError{"scheduled_at", "must be an RFC3339 datetime"})
		}
	}
	if input.Type == string(entity.CommEmail) && input.Status == string(entity.CommSent) &&
		strings.TrimSpace(input.Subject) == "" {
		errors = append(errors, ValidationError{"subject", "is required to send an email"})
	}

	return errors
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.OrganizationName) == "" {
		errors = append(errors, ValidationError{"organization_name", "is required"})
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			errors = append(errors, ValidationError{"timezone", "is not a valid IANA zone"})
		}
	}
	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}
	if len(input.Password) < 8 {
		errors = append(errors, ValidationError{"password", "must have at least 8 characters"})
	} else if len(input.Password) > 72 {
		errors = append(errors, ValidationError{"password", "must not exceed 72 bytes"})
	}

	return errors
}

func isValidPhoneNumber(phone string) bool {
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(phone, "")
	return len(cleaned) >= 7 && len(cleaned) <= 15
}

// parseDate accepts a calendar date (midnight in loc) or an RFC3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
