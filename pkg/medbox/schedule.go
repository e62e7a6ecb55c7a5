package medbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

// getCompartments reads the whole box subtree and guarantees exactly
// NumCompartments keys, substituting an empty document for any compartment
// the store has never seen.
func (m *MedBox) getCompartments() (map[string]json.RawMessage, error) {
	tree, err := m.Store.OnceTree(store.Root)
	if err != nil {
		return nil, err
	}

	compartments := make(map[string]json.RawMessage, NumCompartments)
	for id := 1; id <= NumCompartments; id++ {
		key := store.CompartmentKey(id)
		if doc, ok := tree[key]; ok {
			compartments[key] = doc
		} else {
			compartments[key] = json.RawMessage("{}")
		}
	}
	return compartments, nil
}

func (m *MedBox) getCompartment(id int) (*models.Compartment, error) {
	if err := validateCompartmentID(id); err != nil {
		return nil, err
	}

	doc, err := m.Store.Once(store.CompartmentPath(id))
	if err != nil {
		return nil, err
	}

	var compartment models.Compartment
	if doc != nil {
		if err := json.Unmarshal(doc, &compartment); err != nil {
			return nil, fmt.Errorf("corrupt compartment %d document: %w", id, err)
		}
	}
	return &compartment, nil
}

// updateCompartment merges a partial document into a compartment, the write
// path used by the box firmware (flipping medicine_taken, setting missed).
// Fields absent from partial survive. The write timestamp is always ours.
func (m *MedBox) updateCompartment(id int, partial json.RawMessage) error {
	if err := validateCompartmentID(id); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(partial, &fields); err != nil {
		return fmt.Errorf("%w: body must be a JSON object", ErrInvalidArgument)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	stamped, err := stampLastUpdated(fields)
	if err != nil {
		return err
	}

	logger := common.GetLoggerWith(
		common.LoggerNameMedboxCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySchedule),
	)
	logger.Info("Updating compartment", zap.Int("compartment", id), zap.ByteString("partial", partial))

	return m.Store.Update(store.CompartmentPath(id), stamped)
}

// replaceCompartment writes a full compartment document. A replace is always
// a caregiver edit, so the current cycle's confirmation is cleared no matter
// what the caller put in the document.
func (m *MedBox) replaceCompartment(id int, compartment *models.Compartment) error {
	if err := validateCompartmentID(id); err != nil {
		return err
	}

	doc := *compartment
	doc.MedicineTaken = false
	doc.LastUpdated = time.Now().UnixMilli()
	if doc.Medicines == nil {
		doc.Medicines = []models.Medicine{}
	}

	payload, err := json.Marshal(&doc)
	if err != nil {
		return err
	}

	logger := common.GetLoggerWith(
		common.LoggerNameMedboxCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySchedule),
	)
	logger.Info("Replacing compartment", zap.Int("compartment", id), zap.Reflect("compartment_doc", doc))

	return m.Store.Set(store.CompartmentPath(id), payload)
}

// saveSchedule composes the edit-form fields into a compartment document and
// replaces it. Medicine rows without a name are dropped rather than blocking
// the save; a tablet count below one falls back to one.
func (m *MedBox) saveSchedule(id int, input *models.ScheduleInput) error {
	if err := validateCompartmentID(id); err != nil {
		return err
	}

	medicines := make([]models.Medicine, 0, len(input.Medicines))
	for _, medicine := range input.Medicines {
		name := strings.TrimSpace(medicine.Name)
		if name == "" {
			continue
		}
		tablets := medicine.Tablets
		if tablets < 1 {
			tablets = 1
		}
		medicines = append(medicines, models.Medicine{Name: name, Tablets: tablets})
	}

	compartment := models.Compartment{
		Time:      ComposeTimeLabel(input.Hour, input.Minute, input.Meridiem),
		Buzzer:    input.Buzzer,
		Medicines: medicines,
	}

	return m.replaceCompartment(id, &compartment)
}

// resetCompartments restores all four compartments to the empty schedule in
// one atomic multi-path write. The system status document is the box's own
// and is deliberately left alone.
func (m *MedBox) resetCompartments() error {
	defaults, err := json.Marshal(models.Compartment{Medicines: []models.Medicine{}})
	if err != nil {
		return err
	}

	docs := make(map[string]json.RawMessage, NumCompartments)
	for id := 1; id <= NumCompartments; id++ {
		docs[store.CompartmentPath(id)] = defaults
	}

	logger := common.GetLoggerWith(
		common.LoggerNameMedboxCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryReset),
	)
	logger.Info("Resetting all compartments to defaults")

	if err := m.Store.SetMulti(docs); err != nil {
		return err
	}

	logger.Info("Reset complete")
	return nil
}

func stampLastUpdated(fields map[string]json.RawMessage) (json.RawMessage, error) {
	stamp, err := json.Marshal(time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	fields["last_updated"] = stamp
	return json.Marshal(fields)
}

type IScheduleImpl struct {
	box *MedBox
}

func (is *IScheduleImpl) GetCompartments() (map[string]json.RawMessage, error) {
	return is.box.getCompartments()
}

func (is *IScheduleImpl) GetCompartment(id int) (*models.Compartment, error) {
	return is.box.getCompartment(id)
}

func (is *IScheduleImpl) UpdateCompartment(id int, partial json.RawMessage) error {
	return is.box.updateCompartment(id, partial)
}

func (is *IScheduleImpl) ReplaceCompartment(id int, compartment *models.Compartment) error {
	return is.box.replaceCompartment(id, compartment)
}

func (is *IScheduleImpl) SaveSchedule(id int, input *models.ScheduleInput) error {
	return is.box.saveSchedule(id, input)
}

func (is *IScheduleImpl) ResetCompartments() error {
	return is.box.resetCompartments()
}

func (m *MedBox) GetISchedule() ISchedule {
	return &IScheduleImpl{box: m}
}
