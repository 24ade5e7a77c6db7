package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"skillshare/store"
)

const pushBodyLimit = 100

type sendFunc func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// WebPush turns message:new events into browser notifications for every
// subscription the receiver registered.
type WebPush struct {
	subs       store.PushStore
	publicKey  string
	privateKey string
	subject    string
	send       sendFunc
}

func NewWebPush(subs store.PushStore, publicKey, privateKey, subject string) *WebPush {
	return &WebPush{
		subs:       subs,
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
		send:       webpush.SendNotification,
	}
}

func (w *WebPush) PublicKey() string { return w.publicKey }

func (w *WebPush) Publish(userID string, ev Event) {
	if ev.Type != EventMessageNew {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Push] panic in push notification: %v", r)
			}
		}()
		w.deliver(userID, ev)
	}()
}

func (w *WebPush) deliver(userID string, ev Event) {
	msg, ok := ev.Payload.(NewMessage)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := w.subs.ListPushSubscriptions(ctx, userID)
	if err != nil {
		log.Printf("[Push] failed to load subscriptions for %s: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	senderName := msg.SenderName
	if senderName == "" {
		senderName = "Someone"
	}
	body := msg.Message.Content
	if r := []rune(body); len(r) > pushBodyLimit {
		body = string(r[:pushBodyLimit]) + "..."
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title": senderName + " sent a message",
		"body":  body,
		"data": map[string]interface{}{
			"url":       "/messages?otherUserId=" + msg.Message.SenderID,
			"messageId": msg.Message.ID,
			"timestamp": msg.Message.CreatedAt.Unix(),
		},
	})
	if err != nil {
		log.Printf("[Push] failed to marshal payload: %v", err)
		return
	}

	for _, s := range subs {
		sub := &webpush.Subscription{
			Endpoint: s.Endpoint,
			Keys:     webpush.Keys{P256dh: s.P256dh, Auth: s.Auth},
		}
		resp, err := w.send(payload, sub, &webpush.Options{
			Subscriber:      w.subject,
			VAPIDPublicKey:  w.publicKey,
			VAPIDPrivateKey: w.privateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("[Push] failed to send to %s: %v", userID, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
			log.Printf("[Push] subscription expired for %s, deleting", userID)
			if err := w.subs.DeletePushSubscription(ctx, userID, s.Endpoint); err != nil {
				log.Printf("[Push] failed to delete expired subscription: %v", err)
			}
		}
	}
}
