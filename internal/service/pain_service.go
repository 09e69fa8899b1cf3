package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"
	"alcyxob/fitness-scheduler/internal/safety"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPainReportNotFound = errors.New("pain report not found")

// RecoveryStatus is the advisory surface built from a user's pain history.
type RecoveryStatus struct {
	Message       string              `json:"message"`
	EmergencyStop bool                `json:"emergencyStop"`
	ActiveReports []domain.PainReport `json:"activeReports"`
}

// PainService manages pain reports and the recovery-mode surface.
type PainService interface {
	ReportPain(ctx context.Context, userID primitive.ObjectID, bodyPart, notes string) (*domain.PainReport, error)
	ResolvePain(ctx context.Context, reportID primitive.ObjectID) error
	// RecoveryStatus returns the recovery message, active reports and the
	// emergency-stop recommendation. The boolean is advisory only; nothing
	// in the engine acts on it.
	RecoveryStatus(ctx context.Context, userID primitive.ObjectID) (RecoveryStatus, error)
}

// painService implements the PainService interface.
type painService struct {
	painRepo repository.PainReportRepository
	now      func() time.Time
}

// NewPainService creates a new instance of painService.
func NewPainService(painRepo repository.PainReportRepository) PainService {
	return &painService{
		painRepo: painRepo,
		now:      time.Now,
	}
}

// ReportPain records a new pain report, active immediately.
func (s *painService) ReportPain(ctx context.Context, userID primitive.ObjectID, bodyPart, notes string) (*domain.PainReport, error) {
	if bodyPart == "" {
		return nil, errors.New("body part is required")
	}

	report := &domain.PainReport{
		UserID:       userID,
		BodyPart:     bodyPart,
		ReportedDate: s.now().UTC(),
		Notes:        notes,
	}
	reportID, err := s.painRepo.Create(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ID = reportID
	return report, nil
}

// ResolvePain ends a report's exclusion window.
func (s *painService) ResolvePain(ctx context.Context, reportID primitive.ObjectID) error {
	err := s.painRepo.Resolve(ctx, reportID, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPainReportNotFound
	}
	return err
}

// RecoveryStatus assembles the advisory view over the active and recent
// reports.
func (s *painService) RecoveryStatus(ctx context.Context, userID primitive.ObjectID) (RecoveryStatus, error) {
	now := s.now()

	activeSince := now.AddDate(0, 0, -domain.PainActiveWindowDays)
	activeReports, err := s.painRepo.GetActiveSince(ctx, userID, activeSince)
	if err != nil {
		return RecoveryStatus{}, err
	}
	active := safety.ActiveReports(activeReports, now)

	emergencySince := now.AddDate(0, 0, -domain.PainEmergencyWindowDays)
	recent, err := s.painRepo.GetAllSince(ctx, userID, emergencySince)
	if err != nil {
		return RecoveryStatus{}, err
	}

	return RecoveryStatus{
		Message:       safety.RecoveryMessage(active),
		EmergencyStop: safety.EmergencyStop(recent, now),
		ActiveReports: active,
	}, nil
}
