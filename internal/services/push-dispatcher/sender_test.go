package push_dispatcher

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	config "github.com/gomezmon2/latidos/internal/config/push-dispatcher"
	"github.com/gomezmon2/latidos/internal/domain/subscription"
)

// testSubscription builds a subscription with real P-256 key material
// so the payload encryption succeeds end to end.
func testSubscription(t *testing.T, endpoint string) *subscription.Subscription {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &subscription.Subscription{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func testSender(t *testing.T) *WebPushSender {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewSender(config.Push{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subject:         "mailto:test@latidos.app",
		TTL:             60,
	})
}

func TestWebPushSender_Success(t *testing.T) {
	var gotTTL string
	var gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTTL = r.Header.Get("TTL")
		gotEncoding = r.Header.Get("Content-Encoding")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := testSender(t)
	status, detail, err := s.Send(context.Background(), testSubscription(t, srv.URL), []byte(`{"title":"hola"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Empty(t, detail)
	require.Equal(t, "60", gotTTL)
	require.Equal(t, "aes128gcm", gotEncoding)
}

func TestWebPushSender_GoneReturnsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	s := testSender(t)
	status, _, err := s.Send(context.Background(), testSubscription(t, srv.URL), []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusGone, status)
}

func TestWebPushSender_ErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		for i := 0; i < 100; i++ {
			_, _ = w.Write([]byte("very long upstream error "))
		}
	}))
	defer srv.Close()

	s := testSender(t)
	status, detail, err := s.Send(context.Background(), testSubscription(t, srv.URL), []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, status)
	require.NotEmpty(t, detail)
	require.LessOrEqual(t, len(detail), maxResponseBody)
}

func TestWebPushSender_NetworkErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	s := testSender(t)
	_, _, err := s.Send(context.Background(), testSubscription(t, endpoint), []byte(`{}`))
	require.Error(t, err)
}
