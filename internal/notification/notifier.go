package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/worker"
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

// SubscriptionStore is the part of the store the notifier needs.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Notifier pushes batch completion notices to every subscriber from its own
// goroutines so task workers never wait on the network.
type Notifier struct {
	size    int
	jobs    chan worker.Summary
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewNotifier creates a notifier with size sender goroutines.
func NewNotifier(size int, store SubscriptionStore, webpushOptions *webpush.Options) *Notifier {
	if size <= 0 {
		size = 1
	}
	return &Notifier{
		size:    size,
		jobs:    make(chan worker.Summary, size*16),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the sender goroutines.
func (n *Notifier) Start(ctx context.Context) {
	for i := 0; i < n.size; i++ {
		go n.run(ctx, i)
	}
}

func (n *Notifier) run(ctx context.Context, id int) {
	for {
		select {
		case summary := <-n.jobs:
			n.BatchCompleted(ctx, summary)
		case <-ctx.Done():
			log.Printf("Notifier %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notice. It never blocks; a full queue drops the notice.
func (n *Notifier) Dispatch(summary worker.Summary) {
	select {
	case n.jobs <- summary:
	default:
		log.Printf("Notification queue full; dropping notice for batch %s", summary.ID)
	}
}

type payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
	Failed  int    `json:"failed"`
}

// BatchCompleted sends one notice to every stored subscription.
func (n *Notifier) BatchCompleted(ctx context.Context, summary worker.Summary) {
	subscriptions, err := n.store.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching subscriptions for batch %s: %v", summary.ID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	body, err := json.Marshal(payload{
		Title:   "Batch finished",
		Body:    fmt.Sprintf("%d of %d tasks succeeded", summary.Total-summary.Failed, summary.Total),
		BatchID: summary.ID,
		Total:   summary.Total,
		Failed:  summary.Failed,
	})
	if err != nil {
		log.Printf("Error encoding notification for batch %s: %v", summary.ID, err)
		return
	}

	log.Printf("Sending %d notifications for batch %s", len(subscriptions), summary.ID)
	for _, sub := range subscriptions {
		n.sendNotification(ctx, sub, body)
	}
}

// sendNotification sends a single web push notification.
func (n *Notifier) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := n.sender.Send(payload, wpSub, n.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := n.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
