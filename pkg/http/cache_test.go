package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/db"
	"prabhas.dev/medication-box-service/pkg/medbox"
	"prabhas.dev/medication-box-service/pkg/store"
	_ "prabhas.dev/medication-box-service/pkg/testing"
)

func TestCacheMiddlewareServesCachedReads(t *testing.T) {
	common.SetTestLoggerNop()

	docStore := store.NewGormStore(db.GetInstance(db.UseMemorySqliteDialector()))
	require.NoError(t, docStore.Remove(store.Root))
	require.NoError(t, docStore.Set(store.StatusPath, json.RawMessage(`{"battery_percentage":70}`)))

	box := medbox.MedBox{Store: docStore}
	box.WithServices(medbox.ServiceOpts{
		Status:   box.GetIStatus(),
		Schedule: box.GetISchedule(),
	})

	cfg := testConfig()
	cfg.CacheTTL = time.Minute

	rs := &RestfulServer{
		Server:        gin.Default(),
		Box:           &box,
		Cfg:           cfg,
		ResponseCache: gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
	rs.Setup()

	w := doJSON(rs, "GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"battery_percentage":70}`, w.Body.String())

	// the store moves on, the cached read does not
	require.NoError(t, docStore.Set(store.StatusPath, json.RawMessage(`{"battery_percentage":10}`)))

	w = doJSON(rs, "GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"battery_percentage":70}`, w.Body.String())

	// writes are never cached
	w = doJSON(rs, "POST", "/api/status", gin.H{"battery_percentage": 5})
	require.Equal(t, http.StatusOK, w.Code)
}
