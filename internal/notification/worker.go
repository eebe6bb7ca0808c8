package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"uptime-report-backend/internal/model"
)

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

// Subscriptions is the part of the store the workers need.
type Subscriptions interface {
	SubscriptionsForReport(ctx context.Context, reportID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint, reportID string) error
}

// WorkerPool manages a pool of workers that tell subscribers a report is ready.
type WorkerPool struct {
	size    int
	jobs    chan string
	subs    Subscriptions
	webpush *webpush.Options
	sender  NotificationSender
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs Subscriptions, webpushOptions *webpush.Options) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*16),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)
	for {
		select {
		case reportID := <-wp.jobs:
			log.Printf("Worker %d processing report %s", id, reportID)
			wp.sendNotificationsForReport(ctx, reportID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a report, blocking while the queue is full.
func (wp *WorkerPool) Dispatch(reportID string) {
	wp.jobs <- reportID
}

// Notify queues a report without blocking the caller. When the queue is
// full the notification is dropped.
func (wp *WorkerPool) Notify(ctx context.Context, reportID string) {
	select {
	case wp.jobs <- reportID:
	case <-ctx.Done():
	default:
		log.Printf("notification queue full, dropping report %s", reportID)
	}
}

func (wp *WorkerPool) sendNotificationsForReport(ctx context.Context, reportID string) {
	subscriptions, err := wp.subs.SubscriptionsForReport(ctx, reportID)
	if err != nil {
		log.Printf("Error fetching subscriptions for report %s: %v", reportID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for report %s", len(subscriptions), reportID)
	message := []byte(fmt.Sprintf("Report %s is ready", reportID))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, message)
	}
}

// sendNotification pushes to one subscriber. The subscription is one-shot, so
// it is removed once the attempt has been made.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	// An expired endpoint is dropped for every report it waits on.
	scope := sub.ReportID
	defer func() {
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint, scope); err != nil {
			log.Printf("Failed to delete subscription %s: %v", sub.Endpoint, err)
		}
	}()

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		scope = ""
	}
}

// Nop discards notifications. It is used when push is not configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}
