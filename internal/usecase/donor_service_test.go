package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

func TestCreateDonorDefaults(t *testing.T) {
	donors := new(MockDonorRepository)
	donors.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := usecase.NewDonorService(donors, nil, fixedClock(), nil)

	d, err := svc.Create(context.Background(), usecase.CreateDonorInput{
		OrganizationID: orgID,
		Name:           "  Grace Hopper ",
		Email:          "Grace@Navy.mil",
		Tags:           []string{"board", "board", " gala "},
		Interests:      map[string]string{"program": "literacy"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", d.Name)
	assert.Equal(t, "grace@navy.mil", d.Email)
	assert.Equal(t, entity.StageNew, d.Stage)
	assert.Equal(t, entity.DonorActive, d.Status)
	assert.Equal(t, []string{"board", "gala"}, d.Tags)
	assert.Equal(t, fixedNow, d.CreatedAt)
}

func TestCreateDonorValidation(t *testing.T) {
	svc := usecase.NewDonorService(new(MockDonorRepository), nil, fixedClock(), nil)

	_, err := svc.Create(context.Background(), usecase.CreateDonorInput{
		OrganizationID: orgID,
		Email:          "not-an-email",
		Stage:          "WHALE",
	})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	fields := make([]string, 0, len(de.Fields))
	for _, f := range de.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "email", "stage"}, fields)
}

func TestListDonorsClampsPageSize(t *testing.T) {
	donors := new(MockDonorRepository)
	donors.On("List", mock.Anything, orgID, entity.DonorFilter{Status: entity.DonorActive, Limit: 500}).Return(nil, nil)
	svc := usecase.NewDonorService(donors, nil, fixedClock(), nil)

	got, err := svc.List(context.Background(), orgID, usecase.ListDonorsFilter{Status: "ACTIVE", Limit: 10000})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeactivateDonor(t *testing.T) {
	donors := new(MockDonorRepository)
	donors.On("FindByID", mock.Anything, donorID).Return(testDonor(), nil)
	donors.On("UpdateStatus", mock.Anything, donorID, entity.DonorInactive).Return(nil)
	svc := usecase.NewDonorService(donors, nil, fixedClock(), nil)

	d, err := svc.Deactivate(context.Background(), orgID, donorID)

	require.NoError(t, err)
	assert.Equal(t, entity.DonorInactive, d.Status)
}

func TestDeactivateAlreadyInactiveDonorIsNoop(t *testing.T) {
	donors := new(MockDonorRepository)
	d := testDonor()
	d.Status = entity.DonorInactive
	donors.On("FindByID", mock.Anything, donorID).Return(d, nil)
	svc := usecase.NewDonorService(donors, nil, fixedClock(), nil)

	_, err := svc.Deactivate(context.Background(), orgID, donorID)

	require.NoError(t, err)
	donors.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestListDonorCommunications(t *testing.T) {
	donors := new(MockDonorRepository)
	comms := new(MockCommunicationRepository)
	donors.On("FindByID", mock.Anything, donorID).Return(testDonor(), nil)
	comms.On("ListByDonor", mock.Anything, donorID, 100).Return([]*entity.Communication{{ID: "c1"}}, nil)

	got, err := usecase.NewDonorService(donors, comms, fixedClock(), nil).ListCommunications(context.Background(), orgID, donorID)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
