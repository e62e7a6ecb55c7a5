package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"prabhas.dev/medication-box-service/pkg/common"
	"prabhas.dev/medication-box-service/pkg/medbox"
	"prabhas.dev/medication-box-service/pkg/models"
	"prabhas.dev/medication-box-service/pkg/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Worker watches the four compartments and pushes a notification to every
// registered browser subscription when a compartment's missed flag flips on.
type Worker struct {
	size    int
	jobs    chan int
	store   store.Store
	webpush *webpush.Options
	sender  Sender

	mu         sync.Mutex
	seen       map[int]bool
	lastMissed map[int]bool

	subs []*store.Subscription
}

func NewWorker(size int, st store.Store, webpushOptions *webpush.Options) *Worker {
	return &Worker{
		size:       size,
		jobs:       make(chan int, size),
		store:      st,
		webpush:    webpushOptions,
		sender:     &WebPushSender{},
		seen:       make(map[int]bool),
		lastMissed: make(map[int]bool),
	}
}

// Start launches the worker goroutines and subscribes to the compartments.
func (w *Worker) Start(ctx context.Context) error {
	for i := 0; i < w.size; i++ {
		go w.worker(ctx, i)
	}

	for id := 1; id <= medbox.NumCompartments; id++ {
		id := id
		sub, err := w.store.Subscribe(store.CompartmentPath(id), func(doc json.RawMessage) {
			w.observe(id, doc)
		})
		if err != nil {
			w.Stop()
			return err
		}
		w.subs = append(w.subs, sub)
	}
	return nil
}

// Stop cancels the compartment subscriptions. Worker goroutines exit with
// the context given to Start.
func (w *Worker) Stop() {
	for _, sub := range w.subs {
		sub.Cancel()
	}
	w.subs = nil
}

// observe tracks the missed flag per compartment. The first delivery after
// Start only establishes the baseline, so a restart does not re-notify for
// an already-missed dose.
func (w *Worker) observe(id int, doc json.RawMessage) {
	var compartment models.Compartment
	if doc != nil {
		if err := json.Unmarshal(doc, &compartment); err != nil {
			return
		}
	}

	w.mu.Lock()
	first := !w.seen[id]
	flipped := compartment.Missed && !w.lastMissed[id]
	w.seen[id] = true
	w.lastMissed[id] = compartment.Missed
	w.mu.Unlock()

	if !first && flipped {
		w.Dispatch(id)
	}
}

// Dispatch sends a job to the worker pool.
func (w *Worker) Dispatch(compartmentID int) {
	w.jobs <- compartmentID
}

func (w *Worker) worker(ctx context.Context, id int) {
	logger := common.GetLoggerWith(common.LoggerNameNotify, zap.Int("worker", id))
	logger.Info("Worker started")
	for {
		select {
		case compartmentID := <-w.jobs:
			logger.Info("Processing missed dose", zap.Int("compartment", compartmentID))
			w.sendMissedNotifications(compartmentID)
		case <-ctx.Done():
			logger.Info("Worker shutting down")
			return
		}
	}
}

// sendMissedNotifications fetches every push registration and notifies it
// about the missed dose in the given compartment.
func (w *Worker) sendMissedNotifications(compartmentID int) {
	logger := common.GetLoggerWith(common.LoggerNameNotify)

	registrations, err := w.store.OnceTree(store.PushRoot)
	if err != nil {
		logger.Error("Error fetching push registrations", zap.Error(err))
		return
	}
	if len(registrations) == 0 {
		return
	}

	message := fmt.Sprintf("Compartment %d dose missed", compartmentID)
	doc, err := w.store.Once(store.CompartmentPath(compartmentID))
	if err == nil && doc != nil {
		var compartment models.Compartment
		if json.Unmarshal(doc, &compartment) == nil && compartment.Time != "" {
			message = fmt.Sprintf("Compartment %d dose missed (scheduled %s)", compartmentID, compartment.Time)
		}
	}

	logger.Info("Sending missed-dose notifications",
		zap.Int("compartment", compartmentID),
		zap.Int("registrations", len(registrations)))

	for key, raw := range registrations {
		var registration models.PushSubscription
		if err := json.Unmarshal(raw, &registration); err != nil {
			logger.Error("Corrupt push registration", zap.String("key", key), zap.Error(err))
			continue
		}
		w.sendNotification(key, registration, []byte(message))
	}
}

// sendNotification sends a single web push notification, pruning the
// registration when the push service reports it gone.
func (w *Worker) sendNotification(key string, registration models.PushSubscription, payload []byte) {
	logger := common.GetLoggerWith(common.LoggerNameNotify)

	sub := &webpush.Subscription{
		Endpoint: registration.Endpoint,
		Keys: webpush.Keys{
			P256dh: registration.P256dh,
			Auth:   registration.Auth,
		},
	}

	resp, err := w.sender.Send(payload, sub, w.webpush)
	if err != nil {
		logger.Error("Error sending notification", zap.String("endpoint", registration.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		logger.Info("Push registration expired, deleting", zap.String("endpoint", registration.Endpoint))
		if err := w.store.Remove(store.PushRoot + "/" + key); err != nil {
			logger.Error("Failed to delete expired registration", zap.String("key", key), zap.Error(err))
		}
	}
}
