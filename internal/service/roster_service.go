package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RosterService ingests registrar and LMS CSV exports. Rows upsert by UIN:
// unknown UINs become new student accounts, known UINs get the exported
// fields refreshed.
type RosterService interface {
	// ImportRegistrarCSV loads a registrar export with FIRST NAME, LAST
	// NAME, EMAIL and UIN columns. Returns the number of rows processed.
	ImportRegistrarCSV(ctx context.Context, r io.Reader) (int, error)
	// ImportLMSCSV loads an LMS export with ID, SIS Login ID and Section
	// columns. Rows without a usable UIN are skipped.
	ImportLMSCSV(ctx context.Context, r io.Reader) (int, error)
}

type rosterService struct {
	userRepo repository.UserRepository
}

func NewRosterService(userRepo repository.UserRepository) RosterService {
	return &rosterService{userRepo: userRepo}
}

func (s *rosterService) ImportRegistrarCSV(ctx context.Context, r io.Reader) (int, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}
	firstName, err := columnIndex(header, "FIRST NAME")
	if err != nil {
		return 0, err
	}
	lastName, err := columnIndex(header, "LAST NAME")
	if err != nil {
		return 0, err
	}
	email, err := columnIndex(header, "EMAIL")
	if err != nil {
		return 0, err
	}
	uinCol, err := columnIndex(header, "UIN")
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, row := range rows {
		uin, err := strconv.Atoi(strings.TrimSpace(row[uinCol]))
		if err != nil {
			return processed, fmt.Errorf("%w: row %d has a non-numeric UIN", ErrValidation, processed+1)
		}

		// The registrar exports routed student aliases; mail only reaches
		// the primary domain.
		address := strings.Replace(strings.TrimSpace(row[email]), "email.tamu.edu", "tamu.edu", 1)

		err = s.upsertByUIN(uin, func(u *model.User) {
			u.FirstName = strings.TrimSpace(row[firstName])
			u.LastName = strings.TrimSpace(row[lastName])
			u.Email = address
		})
		if err != nil {
			return processed, err
		}
		processed++
	}

	log.Info().Int("rows", processed).Msg("Registrar roster imported")
	return processed, nil
}

func (s *rosterService) ImportLMSCSV(ctx context.Context, r io.Reader) (int, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return 0, err
	}
	canvasID, err := columnIndex(header, "ID")
	if err != nil {
		return 0, err
	}
	uinCol, err := columnIndex(header, "SIS Login ID")
	if err != nil {
		return 0, err
	}
	section, err := columnIndex(header, "Section")
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, row := range rows {
		uin, err := strconv.Atoi(strings.TrimSpace(row[uinCol]))
		if err != nil || uin == 0 {
			// Test students and header junk rows carry no UIN.
			continue
		}
		cid, err := strconv.Atoi(strings.TrimSpace(row[canvasID]))
		if err != nil {
			cid = 0
		}

		err = s.upsertByUIN(uin, func(u *model.User) {
			u.Section = strings.TrimSpace(row[section])
			u.CanvasID = cid
		})
		if err != nil {
			return processed, err
		}
		processed++
	}

	log.Info().Int("rows", processed).Msg("LMS roster imported")
	return processed, nil
}

func (s *rosterService) upsertByUIN(uin int, apply func(*model.User)) error {
	existing, err := s.userRepo.FindByUIN(uin)
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: looking up UIN %d: %v", ErrUpstream, uin, err)
	}

	if existing == nil {
		user := &model.User{
			ID:   uuid.New().String(),
			Role: model.RoleStudent,
			UIN:  uin,
		}
		apply(user)
		if err := s.userRepo.Create(user); err != nil {
			return fmt.Errorf("%w: creating user for UIN %d: %v", ErrUpstream, uin, err)
		}
		return nil
	}

	apply(existing)
	if err := s.userRepo.Update(existing); err != nil {
		return fmt.Errorf("%w: updating user for UIN %d: %v", ErrUpstream, uin, err)
	}
	return nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed CSV: %v", ErrValidation, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: CSV has no data rows", ErrValidation)
	}
	return records[0], records[1:], nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: missing CSV column %q", ErrValidation, name)
}
