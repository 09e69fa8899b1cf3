package safety

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
)

// bodyPartContraindications maps a reported body part to the contraindication
// labels exercises stressing it carry. Lookup is case-sensitive on the body
// part names offered by the reporting UI.
var bodyPartContraindications = map[string][]string{
	"Lower back": {"back-stress", "core-intensive"},
	"Knee":       {"knee-stress", "high-impact"},
	"Shoulder":   {"shoulder-stress", "upper-body-intensive"},
	"Neck":       {"neck-strain"},
	"Hip":        {"hip-stress", "high-impact"},
	"Ankle":      {"high-impact", "ankle-stress"},
	"Wrist":      {"wrist-stress", "upper-body-intensive"},
	"Elbow":      {"elbow-stress", "upper-body-intensive"},
	"Abdomen":    {"diastasis-risk", "core-intensive"},
}

// ActiveReports returns the reports still in their 3-day exclusion window at
// the given time, preserving input order.
func ActiveReports(reports []domain.PainReport, now time.Time) []domain.PainReport {
	var active []domain.PainReport
	for _, report := range reports {
		if report.ActiveAt(now) {
			active = append(active, report)
		}
	}
	return active
}

// DeriveContraindications maps active pain reports to the contraindication
// labels to layer on top of the user's declared constraints. The result is
// deduplicated, ordered by first occurrence (report order, then table order).
// These are time-boxed: they apply only while the reports stay active and
// never mutate the stored profile.
func DeriveContraindications(activeReports []domain.PainReport) []string {
	seen := make(map[string]struct{})
	var derived []string
	for _, report := range activeReports {
		for _, label := range bodyPartContraindications[report.BodyPart] {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			derived = append(derived, label)
		}
	}
	return derived
}

// RecoveryMessage builds the human-readable recovery notice for the active
// reports: empty when there are none, otherwise one sentence naming every
// distinct body part in report order.
func RecoveryMessage(activeReports []domain.PainReport) string {
	if len(activeReports) == 0 {
		return ""
	}

	seen := make(map[string]struct{})
	var parts []string
	for _, report := range activeReports {
		if _, ok := seen[report.BodyPart]; ok {
			continue
		}
		seen[report.BodyPart] = struct{}{}
		parts = append(parts, report.BodyPart)
	}

	return fmt.Sprintf("Recovery mode: %s. Exercises stressing these areas are temporarily excluded.", strings.Join(parts, ", "))
}

// EmergencyStop reports whether the user has made enough pain reports in the
// last 7 days (resolved or not) to warrant the emergency-stop recommendation.
// Advisory only: the engine surfaces the boolean and does not act on it.
func EmergencyStop(reports []domain.PainReport, now time.Time) bool {
	threshold := now.AddDate(0, 0, -domain.PainEmergencyWindowDays)
	count := 0
	for _, report := range reports {
		if !report.ReportedDate.Before(threshold) {
			count++
		}
	}
	return count >= domain.PainEmergencyThreshold
}
