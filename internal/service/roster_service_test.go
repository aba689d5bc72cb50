package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRegistrarCSVCreatesStudents(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewRosterService(userRepo)

	csv := strings.Join([]string{
		"FIRST NAME,LAST NAME,EMAIL,UIN",
		"Alice,Anderson,alice@email.tamu.edu,123004567",
		"Bob,Brown,bob@tamu.edu,123004568",
	}, "\n")

	count, err := svc.ImportRegistrarCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	alice, err := userRepo.FindByUIN(123004567)
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.FirstName)
	assert.Equal(t, "Anderson", alice.LastName)
	assert.Equal(t, model.RoleStudent, alice.Role)
	// Routed alias domains are rewritten to the deliverable one.
	assert.Equal(t, "alice@tamu.edu", alice.Email)
}

func TestImportRegistrarCSVUpsertsByUIN(t *testing.T) {
	userRepo := newFakeUserRepo(model.User{
		ID:        "existing",
		Role:      model.RoleStudent,
		UIN:       123004567,
		FirstName: "Old",
		Email:     "old@tamu.edu",
		Section:   "500",
	})
	svc := NewRosterService(userRepo)

	csv := "FIRST NAME,LAST NAME,EMAIL,UIN\nAlice,Anderson,alice@tamu.edu,123004567\n"
	_, err := svc.ImportRegistrarCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	user, err := userRepo.FindByUIN(123004567)
	require.NoError(t, err)
	assert.Equal(t, "existing", user.ID, "re-import must not mint a new account")
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "alice@tamu.edu", user.Email)
	assert.Equal(t, "500", user.Section, "fields the export lacks stay untouched")
}

func TestImportRegistrarCSVRejectsBadUIN(t *testing.T) {
	svc := NewRosterService(newFakeUserRepo())

	csv := "FIRST NAME,LAST NAME,EMAIL,UIN\nAlice,Anderson,alice@tamu.edu,not-a-number\n"
	_, err := svc.ImportRegistrarCSV(context.Background(), strings.NewReader(csv))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestImportRegistrarCSVMissingColumn(t *testing.T) {
	svc := NewRosterService(newFakeUserRepo())

	csv := "FIRST NAME,LAST NAME,UIN\nAlice,Anderson,123004567\n"
	_, err := svc.ImportRegistrarCSV(context.Background(), strings.NewReader(csv))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestImportLMSCSVSkipsRowsWithoutUIN(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewRosterService(userRepo)

	csv := strings.Join([]string{
		"ID,SIS Login ID,Section",
		"900001,123004567,CSCE-500",
		"900002,,CSCE-501",
		"900003,0,CSCE-502",
	}, "\n")

	count, err := svc.ImportLMSCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	user, err := userRepo.FindByUIN(123004567)
	require.NoError(t, err)
	assert.Equal(t, 900001, user.CanvasID)
	assert.Equal(t, "CSCE-500", user.Section)
	assert.Equal(t, model.RoleStudent, user.Role)
}

func TestImportLMSCSVUpdatesExistingStudent(t *testing.T) {
	userRepo := newFakeUserRepo(model.User{
		ID:        "existing",
		Role:      model.RoleStudent,
		UIN:       123004567,
		FirstName: "Alice",
	})
	svc := NewRosterService(userRepo)

	csv := "ID,SIS Login ID,Section\n900001,123004567,CSCE-500\n"
	_, err := svc.ImportLMSCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	user, err := userRepo.FindByUIN(123004567)
	require.NoError(t, err)
	assert.Equal(t, "existing", user.ID)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, 900001, user.CanvasID)
	assert.Equal(t, "CSCE-500", user.Section)
}

func TestImportCSVWithoutRows(t *testing.T) {
	svc := NewRosterService(newFakeUserRepo())

	_, err := svc.ImportRegistrarCSV(context.Background(), strings.NewReader("FIRST NAME,LAST NAME,EMAIL,UIN\n"))
	assert.True(t, errors.Is(err, ErrValidation))
}
