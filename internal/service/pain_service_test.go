package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReportAndResolvePain(t *testing.T) {
	repo := &fakePainRepo{}
	svc := service.NewPainService(repo)
	userID := primitive.NewObjectID()

	report, err := svc.ReportPain(context.Background(), userID, "Knee", "after the long ride")
	if err != nil {
		t.Fatalf("ReportPain: %v", err)
	}
	if report.ID.IsZero() {
		t.Error("report was not assigned an ID")
	}
	if report.BodyPart != "Knee" || report.Notes != "after the long ride" {
		t.Errorf("unexpected report: %+v", report)
	}

	if _, err := svc.ReportPain(context.Background(), userID, "", ""); err == nil {
		t.Error("expected an error for an empty body part")
	}

	if err := svc.ResolvePain(context.Background(), report.ID); err != nil {
		t.Fatalf("ResolvePain: %v", err)
	}
	if repo.reports[0].ResolvedDate == nil {
		t.Error("report was not marked resolved")
	}

	if err := svc.ResolvePain(context.Background(), primitive.NewObjectID()); !errors.Is(err, service.ErrPainReportNotFound) {
		t.Errorf("expected ErrPainReportNotFound, got %v", err)
	}
}

func TestRecoveryStatus(t *testing.T) {
	repo := &fakePainRepo{}
	svc := service.NewPainService(repo)
	userID := primitive.NewObjectID()

	t.Run("no reports", func(t *testing.T) {
		status, err := svc.RecoveryStatus(context.Background(), userID)
		if err != nil {
			t.Fatalf("RecoveryStatus: %v", err)
		}
		if status.Message != "" || status.EmergencyStop || len(status.ActiveReports) != 0 {
			t.Errorf("expected empty status, got %+v", status)
		}
	})

	t.Run("active report produces the recovery message", func(t *testing.T) {
		if _, err := svc.ReportPain(context.Background(), userID, "Lower back", ""); err != nil {
			t.Fatal(err)
		}

		status, err := svc.RecoveryStatus(context.Background(), userID)
		if err != nil {
			t.Fatalf("RecoveryStatus: %v", err)
		}
		if !strings.Contains(status.Message, "Lower back") {
			t.Errorf("message does not name the body part: %q", status.Message)
		}
		if status.EmergencyStop {
			t.Error("one report must not trigger the emergency stop")
		}
		if len(status.ActiveReports) != 1 {
			t.Errorf("expected 1 active report, got %d", len(status.ActiveReports))
		}
	})

	t.Run("three reports in a week trigger the emergency stop", func(t *testing.T) {
		// Two more on top of the Lower back report above, one already resolved.
		if _, err := svc.ReportPain(context.Background(), userID, "Knee", ""); err != nil {
			t.Fatal(err)
		}
		resolved := domain.PainReport{
			UserID:       userID,
			BodyPart:     "Hip",
			ReportedDate: time.Now().UTC().AddDate(0, 0, -2),
		}
		if _, err := repo.Create(context.Background(), &resolved); err != nil {
			t.Fatal(err)
		}
		if err := repo.Resolve(context.Background(), resolved.ID, time.Now().UTC()); err != nil {
			t.Fatal(err)
		}

		status, err := svc.RecoveryStatus(context.Background(), userID)
		if err != nil {
			t.Fatalf("RecoveryStatus: %v", err)
		}
		if !status.EmergencyStop {
			t.Error("expected the emergency stop after three reports in seven days")
		}
	})
}
