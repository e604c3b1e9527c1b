// Package notify publishes outbound email notifications to a RabbitMQ queue
// consumed by the delivery worker. Sending is fire-and-forget: broker
// failures are logged and never fail the operation that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const emailQueue = "notifications.email"

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Publisher struct {
	conn *amqp.Connection
}

// NewPublisher dials the broker. Returns an error the caller may treat as
// non-fatal; a nil *Publisher is safe to use and drops messages with a log
// line.
func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to message broker")
	return &Publisher{conn: conn}, nil
}

// Send queues one email. Errors are logged and swallowed.
func (p *Publisher) Send(ctx context.Context, msg EmailMessage) {
	if p == nil || p.conn == nil {
		log.Printf("Warning: notification dropped (broker unavailable): %s to %s", msg.Subject, msg.To)
		return
	}

	ch, err := p.conn.Channel()
	if err != nil {
		log.Printf("Warning: failed to open broker channel: %v", err)
		return
	}
	defer ch.Close()

	// Idempotent; durable so queued mail survives broker restarts.
	if _, err := ch.QueueDeclare(emailQueue, true, false, false, false, nil); err != nil {
		log.Printf("Warning: failed to declare notification queue: %v", err)
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Warning: failed to marshal notification: %v", err)
		return
	}

	err = ch.PublishWithContext(ctx, "", emailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("Warning: failed to publish notification: %v", err)
	}
}

func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		_ = p.conn.Close()
	}
}

// VerificationEmail builds the account-verification message.
func VerificationEmail(to, frontendURL, token string) EmailMessage {
	return EmailMessage{
		To:      to,
		Subject: "Verify your CivicVoice account",
		Body: "Thank you for registering with CivicVoice. Please open the link below to verify your email address:\n\n" +
			frontendURL + "/verify-email?token=" + token + "\n\n" +
			"This link will expire in 24 hours. If you didn't create this account, please ignore this email.",
	}
}

// PurchaseReceipt builds the post-purchase receipt message.
func PurchaseReceipt(to string, reportCount, amountCents int64, expiresAt time.Time) EmailMessage {
	return EmailMessage{
		To:      to,
		Subject: "Your CivicVoice data export is ready",
		Body: fmt.Sprintf("Your purchase has been confirmed.\n\n"+
			"Reports: %d\nAmount: $%d.%02d\nDownload available until: %s\n",
			reportCount, amountCents/100, amountCents%100,
			expiresAt.UTC().Format(time.RFC3339)),
	}
}
