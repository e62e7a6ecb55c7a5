package http

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/medbox"
	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

type streamEvent struct {
	name string
	data any
}

// StreamEvents is the dashboard's live feed: one SSE event per store change,
// carrying the render model for the changed path. The first events after
// connecting are the current snapshots, so a client needs no separate
// initial fetch. Every event is a full snapshot, never a delta.
func (rs *RestfulServer) StreamEvents(c *gin.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySubscription),
	)

	events := make(chan streamEvent, 32)

	// A gone client stops draining; dropping its snapshots is harmless and
	// must never block the store's delivery goroutines.
	push := func(ev streamEvent) {
		select {
		case events <- ev:
		default:
		}
	}

	var subs []*store.Subscription
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	statusSub, err := rs.Box.Store.Subscribe(store.StatusPath, func(doc json.RawMessage) {
		var status models.SystemStatus
		present := doc != nil && json.Unmarshal(doc, &status) == nil
		push(streamEvent{name: "system_status", data: medbox.SummarizeBattery(&status, present)})
	})
	if err != nil {
		respondError(c, err)
		return
	}
	subs = append(subs, statusSub)

	for id := 1; id <= medbox.NumCompartments; id++ {
		id := id
		sub, err := rs.Box.Store.Subscribe(store.CompartmentPath(id), func(doc json.RawMessage) {
			var compartment models.Compartment
			if doc != nil {
				if err := json.Unmarshal(doc, &compartment); err != nil {
					return
				}
			}
			push(streamEvent{name: store.CompartmentKey(id), data: medbox.SummarizeCompartment(id, &compartment)})
		})
		if err != nil {
			respondError(c, err)
			return
		}
		subs = append(subs, sub)
	}

	logger.Info("Dashboard stream connected", zap.String("client", c.ClientIP()))

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent(ev.name, ev.data)
			return true
		case <-c.Request.Context().Done():
			logger.Info("Dashboard stream disconnected", zap.String("client", c.ClientIP()))
			return false
		}
	})
}
