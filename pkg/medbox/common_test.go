package medbox

import (
	"testing"

	"github.com/stretchr/testify/require"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/db"
	"prabhas.dev/medication-box-service/pkg/store"
)

// GetMedBoxWithMemoryStore wires a MedBox over the shared in-memory sqlite
// database with a clean box root.
func GetMedBoxWithMemoryStore(t *testing.T) *MedBox {
	t.Helper()
	common.SetTestLoggerNop()

	dbInstance := db.GetInstance(db.UseMemorySqliteDialector())
	box := &MedBox{Store: store.NewGormStore(dbInstance)}
	box.WithServices(ServiceOpts{
		Status:   box.GetIStatus(),
		Schedule: box.GetISchedule(),
	})

	require.NoError(t, box.Store.Remove(store.Root))
	return box
}
