package notification

import (
	"context"
	"errors"
	"fmt"

	deviceRepo "vastramitra/database/repository/device"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoRoute means the recipient has neither a push token nor a phone.
var ErrNoRoute = errors.New("recipient has no delivery route")

// Push is what a Gateway delivers.
type Push struct {
	RecipientID string
	Title       string
	Body        string
	Data        map[string]string
}

// Gateway delivers a push to a recipient. Retries are its own concern.
type Gateway interface {
	Send(ctx context.Context, p Push) error
}

// MessageSender is the part of *messaging.Client the gateway needs.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMGateway sends pushes through Firebase Cloud Messaging and falls back
// to SMS for recipients without a registered token.
type FCMGateway struct {
	fcm     MessageSender
	devices deviceRepo.DeviceRepository
	sms     SMSSender
	logger  *zap.Logger
}

// NewFCMGateway builds the gateway. fcm or sms may be nil when the
// matching provider is not configured.
func NewFCMGateway(fcm MessageSender, devices deviceRepo.DeviceRepository, sms SMSSender, logger *zap.Logger) *FCMGateway {
	return &FCMGateway{fcm: fcm, devices: devices, sms: sms, logger: logger}
}

func (g *FCMGateway) Send(ctx context.Context, p Push) error {
	target, err := g.devices.Get(ctx, p.RecipientID)
	if errors.Is(err, deviceRepo.ErrNoTarget) {
		return fmt.Errorf("%s: %w", p.RecipientID, ErrNoRoute)
	}
	if err != nil {
		return err
	}

	if target.FCMToken != "" && g.fcm != nil {
		id, err := g.fcm.Send(ctx, buildMessage(target.FCMToken, p))
		if err == nil {
			g.logger.Debug("Push sent", zap.String("recipientId", p.RecipientID), zap.String("messageId", id))
			return nil
		}
		if !messaging.IsUnregistered(err) {
			return fmt.Errorf("failed to send FCM message to %s: %w", p.RecipientID, err)
		}
		g.logger.Info("Dropping stale push token", zap.String("recipientId", p.RecipientID))
		if err := g.devices.RemoveToken(ctx, p.RecipientID); err != nil {
			g.logger.Warn("Failed to remove push token", zap.String("recipientId", p.RecipientID), zap.Error(err))
		}
	}

	if target.Phone != "" && g.sms != nil {
		return g.sms.SendSMS(ctx, target.Phone, p.Title+"\n"+p.Body)
	}
	return fmt.Errorf("%s: %w", p.RecipientID, ErrNoRoute)
}

func buildMessage(token string, p Push) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

// LogGateway only logs pushes. Used when no push provider is configured.
type LogGateway struct {
	Logger *zap.Logger
}

func (g LogGateway) Send(_ context.Context, p Push) error {
	g.Logger.Info("Push (not delivered)", zap.String("recipientId", p.RecipientID), zap.String("title", p.Title))
	return nil
}
