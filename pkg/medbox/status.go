package medbox

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

// getStatus reads the system status document. An absent document is not an
// error, it just means the box has not reported yet.
func (m *MedBox) getStatus() (json.RawMessage, error) {
	doc, err := m.Store.Once(store.StatusPath)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return json.RawMessage("{}"), nil
	}
	return doc, nil
}

// reportBattery is the box's own write path: a partial merge so any other
// status field the firmware maintains survives.
func (m *MedBox) reportBattery(percentage int) error {
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("%w: battery percentage must be between 0 and 100", ErrInvalidArgument)
	}

	logger := common.GetLoggerWith(
		common.LoggerNameMedboxCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryStatus),
	)

	partial, err := json.Marshal(models.SystemStatus{BatteryPercentage: percentage})
	if err != nil {
		return err
	}

	logger.Info("Received battery report", zap.Int("battery_percentage", percentage))

	if err := m.Store.Update(store.StatusPath, partial); err != nil {
		return err
	}

	logger.Info("Stored battery report", zap.Int("battery_percentage", percentage))
	return nil
}

type IStatusImpl struct {
	box *MedBox
}

func (is *IStatusImpl) GetStatus() (json.RawMessage, error) {
	return is.box.getStatus()
}

func (is *IStatusImpl) ReportBattery(percentage int) error {
	return is.box.reportBattery(percentage)
}

func (m *MedBox) GetIStatus() IStatus {
	return &IStatusImpl{box: m}
}
