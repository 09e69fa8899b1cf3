package safety_test

import (
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/safety"

	"github.com/google/go-cmp/cmp"
)

var painNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func report(bodyPart string, daysAgo int) domain.PainReport {
	return domain.PainReport{
		BodyPart:     bodyPart,
		ReportedDate: painNow.AddDate(0, 0, -daysAgo),
	}
}

func resolved(r domain.PainReport) domain.PainReport {
	resolvedAt := painNow.AddDate(0, 0, -1)
	r.ResolvedDate = &resolvedAt
	return r
}

func TestActiveReports(t *testing.T) {
	tests := []struct {
		name    string
		reports []domain.PainReport
		want    []string // body parts expected active, in order
	}{
		{
			name:    "fresh report is active",
			reports: []domain.PainReport{report("Knee", 0)},
			want:    []string{"Knee"},
		},
		{
			name:    "report at the 3 day boundary is still active",
			reports: []domain.PainReport{report("Knee", 3)},
			want:    []string{"Knee"},
		},
		{
			name:    "report older than 3 days is not active",
			reports: []domain.PainReport{report("Knee", 4)},
			want:    nil,
		},
		{
			name:    "resolved report is not active regardless of age",
			reports: []domain.PainReport{resolved(report("Knee", 1))},
			want:    nil,
		},
		{
			name: "mix preserves order",
			reports: []domain.PainReport{
				report("Lower back", 1),
				report("Knee", 5),
				report("Abdomen", 2),
			},
			want: []string{"Lower back", "Abdomen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range safety.ActiveReports(tt.reports, painNow) {
				got = append(got, r.BodyPart)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ActiveReports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveContraindications(t *testing.T) {
	tests := []struct {
		name    string
		reports []domain.PainReport
		want    []string
	}{
		{
			name:    "no reports",
			reports: nil,
			want:    nil,
		},
		{
			name:    "knee maps to knee-stress and high-impact",
			reports: []domain.PainReport{report("Knee", 0)},
			want:    []string{"knee-stress", "high-impact"},
		},
		{
			name:    "abdomen maps to diastasis-risk and core-intensive",
			reports: []domain.PainReport{report("Abdomen", 0)},
			want:    []string{"diastasis-risk", "core-intensive"},
		},
		{
			name: "overlapping labels are deduplicated in first-occurrence order",
			reports: []domain.PainReport{
				report("Knee", 0),
				report("Hip", 1),
			},
			want: []string{"knee-stress", "high-impact", "hip-stress"},
		},
		{
			name:    "unknown body part contributes nothing",
			reports: []domain.PainReport{report("Funny bone", 0)},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := safety.DeriveContraindications(tt.reports)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DeriveContraindications mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecoveryMessage(t *testing.T) {
	if got := safety.RecoveryMessage(nil); got != "" {
		t.Errorf("expected empty message for no reports, got %q", got)
	}

	got := safety.RecoveryMessage([]domain.PainReport{
		report("Abdomen", 0),
		report("Knee", 1),
		report("Abdomen", 2),
	})
	if !strings.HasPrefix(got, "Recovery mode: ") {
		t.Errorf("unexpected message shape: %q", got)
	}
	if !strings.Contains(got, "Abdomen, Knee") {
		t.Errorf("expected deduplicated body parts in report order, got %q", got)
	}
	if !strings.Contains(got, "temporarily excluded") {
		t.Errorf("message missing exclusion notice: %q", got)
	}
}

func TestEmergencyStop(t *testing.T) {
	tests := []struct {
		name    string
		reports []domain.PainReport
		want    bool
	}{
		{
			name:    "two recent reports stay below the threshold",
			reports: []domain.PainReport{report("Knee", 1), report("Hip", 2)},
			want:    false,
		},
		{
			name:    "three reports within 7 days trigger the stop",
			reports: []domain.PainReport{report("Knee", 1), report("Hip", 3), report("Ankle", 6)},
			want:    true,
		},
		{
			name: "resolved reports still count",
			reports: []domain.PainReport{
				resolved(report("Knee", 1)),
				resolved(report("Hip", 2)),
				report("Ankle", 3),
			},
			want: true,
		},
		{
			name: "reports older than 7 days do not count",
			reports: []domain.PainReport{
				report("Knee", 8),
				report("Hip", 9),
				report("Ankle", 1),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safety.EmergencyStop(tt.reports, painNow); got != tt.want {
				t.Errorf("EmergencyStop = %v, want %v", got, tt.want)
			}
		})
	}
}
