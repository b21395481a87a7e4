package push_dispatcher

import (
	"context"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	config "github.com/gomezmon2/latidos/internal/config/push-dispatcher"
	"github.com/gomezmon2/latidos/internal/domain/subscription"
)

const maxResponseBody = 256

// WebPushSender signs and encrypts payloads per RFC 8291/8292 and
// submits them to the subscription endpoint.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int

	log *zap.Logger
}

func NewSender(cfg config.Push) *WebPushSender {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 86400
	}
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.Subject,
		ttl:        ttl,
		log:        zap.L().With(zap.String("component", "push-dispatcher.sender")),
	}
}

func (s *WebPushSender) WithLogger(l *zap.Logger) *WebPushSender {
	if l == nil {
		return s
	}
	cp := *s
	cp.log = l.With(zap.String("component", "push-dispatcher.sender"))
	return &cp
}

var _ subscription.PushSender = (*WebPushSender)(nil)

func (s *WebPushSender) Send(ctx context.Context, sub *subscription.Subscription, payload []byte) (int, string, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, "", nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, string(b), nil
}
