package medbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/models"
	_ "prabhas.dev/medication-box-service/pkg/testing"
)

func TestBadgePrecedence(t *testing.T) {
	compartments := []*models.Compartment{
		{Missed: true, MedicineTaken: true}, // missed wins over taken
		{Missed: true},
		{MedicineTaken: true},
		{},
	}

	badges := common.Mapper(compartments, func(c *models.Compartment) string {
		return SummarizeCompartment(1, c).Badge
	})

	assert.Equal(t, []string{
		models.BadgeMissed,
		models.BadgeMissed,
		models.BadgeTaken,
		models.BadgePending,
	}, badges)
}

func TestSummaryTimeLabel(t *testing.T) {
	summary := SummarizeCompartment(2, &models.Compartment{})
	assert.Equal(t, "--:--", summary.TimeLabel)

	summary = SummarizeCompartment(2, &models.Compartment{Time: "08:30 AM"})
	assert.Equal(t, "08:30 AM", summary.TimeLabel)
	assert.Equal(t, "Scheduled: 08:30 AM", summary.StatusLine)

	summary = SummarizeCompartment(2, &models.Compartment{
		Time:          "08:30 AM",
		MedicineTaken: true,
		LastTakenTime: "08:42 AM",
	})
	assert.Equal(t, "08:30 AM (at 08:42 AM)", summary.TimeLabel)
	assert.Equal(t, "Taken Today", summary.StatusLine)
}

func TestMissedHidesConfirmationTimestamp(t *testing.T) {
	summary := SummarizeCompartment(1, &models.Compartment{
		Time:          "08:30 AM",
		Missed:        true,
		MedicineTaken: true,
		LastTakenTime: "08:42 AM",
	})
	assert.Equal(t, models.BadgeMissed, summary.Badge)
	assert.Equal(t, "08:30 AM", summary.TimeLabel)
}

func TestSummarizeBattery(t *testing.T) {
	view := SummarizeBattery(&models.SystemStatus{BatteryPercentage: 85}, true)
	assert.Equal(t, "85%", view.Label)
	assert.False(t, view.Low)

	view = SummarizeBattery(&models.SystemStatus{BatteryPercentage: 19}, true)
	assert.Equal(t, "19%", view.Label)
	assert.True(t, view.Low)

	view = SummarizeBattery(&models.SystemStatus{BatteryPercentage: 20}, true)
	assert.False(t, view.Low)

	view = SummarizeBattery(&models.SystemStatus{}, false)
	assert.Equal(t, "--%", view.Label)
	assert.False(t, view.Low)
}

func TestComposeAndParseTimeLabel(t *testing.T) {
	label := ComposeTimeLabel(8, 30, "am")
	assert.Equal(t, "08:30 AM", label)

	hour, minute, meridiem, ok := ParseTimeLabel(label)
	assert.True(t, ok)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 30, minute)
	assert.Equal(t, "AM", meridiem)

	_, _, _, ok = ParseTimeLabel("")
	assert.False(t, ok)

	_, _, _, ok = ParseTimeLabel("nonsense")
	assert.False(t, ok)
}
