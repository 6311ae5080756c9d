// Package notification pushes departure notices to browsers following an operator.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"busstation-backend/internal/logging"
	"busstation-backend/internal/model"
)

const moduleName = "notification"

// ErrQueueFull is returned when a departure cannot be queued without blocking.
var ErrQueueFull = errors.New("notification queue is full")

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Subscriptions is the subscription storage the workers read and prune.
type Subscriptions interface {
	ListSubscriptionsForOperator(ctx context.Context, operatorID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// departure is the part of a departed record the message is built from.
type departure struct {
	DispatchID  string
	OperatorID  string
	Plate       string
	Destination string
	ExitTime    time.Time
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan departure
	subs    Subscriptions
	webpush *webpush.Options
	sender  NotificationSender
	log     logrus.FieldLogger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, subs Subscriptions, webpushOptions *webpush.Options, log logrus.FieldLogger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan departure, queueSize),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		log:     log.WithField("module", moduleName),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.WithField("worker", id).Debug("worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForDeparture(ctx, job)
		case <-ctx.Done():
			wp.log.WithField("worker", id).Debug("worker shutting down")
			return
		}
	}
}

// NotifyDeparture queues a departed record without blocking the caller.
// Records without an operator have no subscribers and are skipped.
func (wp *WorkerPool) NotifyDeparture(_ context.Context, rec *model.DispatchRecord) error {
	if rec.VehicleOperatorID == nil || *rec.VehicleOperatorID == "" {
		return nil
	}
	job := departure{
		DispatchID:  rec.ID,
		OperatorID:  *rec.VehicleOperatorID,
		Plate:       rec.VehiclePlateNumber,
		Destination: rec.RouteDestinationName,
	}
	if rec.ExitTime != nil {
		job.ExitTime = *rec.ExitTime
	}

	select {
	case wp.jobs <- job:
		return nil
	default:
		wp.log.WithField("dispatchId", rec.ID).Warn("notification queue full, dropping departure")
		return ErrQueueFull
	}
}

func (wp *WorkerPool) sendNotificationsForDeparture(ctx context.Context, job departure) {
	subscriptions, err := wp.subs.ListSubscriptionsForOperator(ctx, job.OperatorID)
	if err != nil {
		logging.LogError(wp.log, moduleName, "sendNotificationsForDeparture", "list subscriptions", job.OperatorID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.log.WithFields(logrus.Fields{
		"dispatchId":    job.DispatchID,
		"operatorId":    job.OperatorID,
		"subscriptions": len(subscriptions),
	}).Info("sending departure notifications")

	message := departureMessage(job)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func departureMessage(job departure) string {
	msg := fmt.Sprintf("Vehicle %s has departed", job.Plate)
	if job.Destination != "" {
		msg += " for " + job.Destination
	}
	if !job.ExitTime.IsZero() {
		msg += " at " + job.ExitTime.Format("15:04")
	}
	return msg
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		logging.LogError(wp.log, moduleName, "sendNotification", "send", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.WithField("endpoint", sub.Endpoint).Info("subscription expired, deleting")
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			logging.LogError(wp.log, moduleName, "sendNotification", "delete expired subscription", sub.Endpoint, err)
		}
	}
}
