package medbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
	_ "prabhas.dev/medication-box-service/pkg/testing"
)

func TestGetCompartmentsAlwaysHasFourKeys(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	compartments, err := box.Schedule.GetCompartments()
	require.NoError(t, err)

	assert.Len(t, compartments, 4)
	for id := 1; id <= NumCompartments; id++ {
		doc, ok := compartments[store.CompartmentKey(id)]
		require.True(t, ok)
		assert.JSONEq(t, `{}`, string(doc))
	}
}

func TestGetCompartmentsKeepsStoredDocuments(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	require.NoError(t, box.Store.Set(store.CompartmentPath(2), json.RawMessage(`{"time":"09:00 PM"}`)))

	compartments, err := box.Schedule.GetCompartments()
	require.NoError(t, err)

	assert.Len(t, compartments, 4)
	assert.JSONEq(t, `{"time":"09:00 PM"}`, string(compartments["compartment_2"]))
	assert.JSONEq(t, `{}`, string(compartments["compartment_1"]))
}

func TestUpdateCompartmentValidatesID(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	for _, id := range []int{0, 5, -1, 42} {
		err := box.Schedule.UpdateCompartment(id, json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestUpdateCompartmentMergesAndStamps(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	require.NoError(t, box.Store.Set(store.CompartmentPath(1), json.RawMessage(`{"time":"08:30 AM","buzzer":true}`)))
	require.NoError(t, box.Schedule.UpdateCompartment(1, json.RawMessage(`{"medicine_taken":true,"last_taken_time":"08:31 AM"}`)))

	compartment, err := box.Schedule.GetCompartment(1)
	require.NoError(t, err)

	assert.Equal(t, "08:30 AM", compartment.Time)
	assert.True(t, compartment.Buzzer)
	assert.True(t, compartment.MedicineTaken)
	assert.Equal(t, "08:31 AM", compartment.LastTakenTime)
	assert.NotZero(t, compartment.LastUpdated)
}

func TestUpdateCompartmentRejectsNonObjectBody(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	err := box.Schedule.UpdateCompartment(1, json.RawMessage(`"not an object"`))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReplaceCompartmentForcesMedicineTakenFalse(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	err := box.Schedule.ReplaceCompartment(3, &models.Compartment{
		Time:          "07:00 PM",
		MedicineTaken: true, // caller lies, repository wins
	})
	require.NoError(t, err)

	compartment, err := box.Schedule.GetCompartment(3)
	require.NoError(t, err)
	assert.False(t, compartment.MedicineTaken)
	assert.Equal(t, "07:00 PM", compartment.Time)
	assert.NotZero(t, compartment.LastUpdated)
}

func TestReplaceCompartmentDropsUnnamedFields(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	require.NoError(t, box.Store.Set(store.CompartmentPath(1),
		json.RawMessage(`{"time":"06:00 AM","missed":true,"last_taken_time":"yesterday"}`)))

	require.NoError(t, box.Schedule.ReplaceCompartment(1, &models.Compartment{Time: "06:30 AM"}))

	compartment, err := box.Schedule.GetCompartment(1)
	require.NoError(t, err)
	assert.Equal(t, "06:30 AM", compartment.Time)
	assert.False(t, compartment.Missed)
	assert.Empty(t, compartment.LastTakenTime)
}

func TestSaveScheduleComposesDocument(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	err := box.Schedule.SaveSchedule(2, &models.ScheduleInput{
		Hour:     8,
		Minute:   30,
		Meridiem: "AM",
		Buzzer:   true,
		Medicines: []models.Medicine{
			{Name: "Aspirin", Tablets: 2},
		},
	})
	require.NoError(t, err)

	compartment, err := box.Schedule.GetCompartment(2)
	require.NoError(t, err)

	assert.Equal(t, "08:30 AM", compartment.Time)
	assert.True(t, compartment.Buzzer)
	assert.False(t, compartment.MedicineTaken)
	assert.Equal(t, []models.Medicine{{Name: "Aspirin", Tablets: 2}}, compartment.Medicines)
}

func TestSaveScheduleDropsUnnamedRowsAndFixesTablets(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	err := box.Schedule.SaveSchedule(1, &models.ScheduleInput{
		Hour:     9,
		Minute:   5,
		Meridiem: "PM",
		Medicines: []models.Medicine{
			{Name: "", Tablets: 3},
			{Name: "   ", Tablets: 1},
			{Name: "Ibuprofen", Tablets: 0},
		},
	})
	require.NoError(t, err)

	compartment, err := box.Schedule.GetCompartment(1)
	require.NoError(t, err)

	assert.Equal(t, "09:05 PM", compartment.Time)
	assert.Equal(t, []models.Medicine{{Name: "Ibuprofen", Tablets: 1}}, compartment.Medicines)
}

func TestSaveScheduleAllRowsUnnamedSavesEmptyList(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	err := box.Schedule.SaveSchedule(4, &models.ScheduleInput{
		Hour:      11,
		Minute:    0,
		Meridiem:  "AM",
		Medicines: []models.Medicine{{Name: ""}},
	})
	require.NoError(t, err)

	compartment, err := box.Schedule.GetCompartment(4)
	require.NoError(t, err)
	assert.NotNil(t, compartment.Medicines)
	assert.Empty(t, compartment.Medicines)
}

func TestResetCompartmentsRestoresDefaultsAndKeepsStatus(t *testing.T) {
	box := GetMedBoxWithMemoryStore(t)

	require.NoError(t, box.Store.Set(store.StatusPath, json.RawMessage(`{"battery_percentage":73}`)))
	for id := 1; id <= NumCompartments; id++ {
		require.NoError(t, box.Schedule.SaveSchedule(id, &models.ScheduleInput{
			Hour: 8, Minute: 0, Meridiem: "AM",
			Medicines: []models.Medicine{{Name: "Aspirin", Tablets: 1}},
		}))
	}

	require.NoError(t, box.Schedule.ResetCompartments())

	for id := 1; id <= NumCompartments; id++ {
		doc, err := box.Store.Once(store.CompartmentPath(id))
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"time":"","buzzer":false,"medicine_taken":false,"missed":false,"medicines":[]}`,
			string(doc))
	}

	status, err := box.Store.Once(store.StatusPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"battery_percentage":73}`, string(status))
}
