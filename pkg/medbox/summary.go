package medbox

import (
	"fmt"
	"strconv"
	"strings"

	"prabhas.dev/medication-box-service/pkg/models"
)

// LowBatteryThreshold is the percentage below which the dashboard shows the
// low-battery state.
const LowBatteryThreshold = 20

// ComposeTimeLabel renders the stored 12-hour clock string, e.g. "08:30 AM".
func ComposeTimeLabel(hour, minute int, meridiem string) string {
	return fmt.Sprintf("%02d:%02d %s", hour, minute, strings.ToUpper(meridiem))
}

// ParseTimeLabel splits a stored time label back into edit-form fields.
// Returns ok=false for an empty or malformed label.
func ParseTimeLabel(label string) (hour, minute int, meridiem string, ok bool) {
	clock, meridiem, found := strings.Cut(label, " ")
	if !found {
		return 0, 0, "", false
	}
	hourStr, minuteStr, found := strings.Cut(clock, ":")
	if !found {
		return 0, 0, "", false
	}

	var err error
	if hour, err = strconv.Atoi(hourStr); err != nil {
		return 0, 0, "", false
	}
	if minute, err = strconv.Atoi(minuteStr); err != nil {
		return 0, 0, "", false
	}
	return hour, minute, meridiem, true
}

// SummarizeCompartment builds the dashboard card for one compartment. Badge
// precedence is missed over taken over pending.
func SummarizeCompartment(id int, compartment *models.Compartment) models.CompartmentSummary {
	summary := models.CompartmentSummary{
		ID:        id,
		TimeLabel: compartment.Time,
	}
	if summary.TimeLabel == "" {
		summary.TimeLabel = "--:--"
	}

	switch {
	case compartment.Missed:
		summary.Badge = models.BadgeMissed
	case compartment.MedicineTaken:
		summary.Badge = models.BadgeTaken
		if compartment.LastTakenTime != "" {
			summary.TimeLabel += fmt.Sprintf(" (at %s)", compartment.LastTakenTime)
		}
	default:
		summary.Badge = models.BadgePending
	}

	if compartment.MedicineTaken {
		summary.StatusLine = "Taken Today"
	} else {
		summary.StatusLine = fmt.Sprintf("Scheduled: %s", compartment.Time)
	}

	return summary
}

// SummarizeBattery builds the battery indicator. present is false when the
// box has never reported, which renders as "--%".
func SummarizeBattery(status *models.SystemStatus, present bool) models.BatteryView {
	if !present {
		return models.BatteryView{Label: "--%"}
	}
	return models.BatteryView{
		Label:      fmt.Sprintf("%d%%", status.BatteryPercentage),
		Percentage: status.BatteryPercentage,
		Low:        status.BatteryPercentage < LowBatteryThreshold,
	}
}
