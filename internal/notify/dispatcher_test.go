package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSubscription builds a subscription with a real P-256 keypair so the
// webpush library can encrypt against it.
func testSubscription(t *testing.T, endpoint string) Subscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	return Subscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(authSecret),
	}
}

func testDispatcher(t *testing.T, reg *Registry) *Dispatcher {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewDispatcher(reg, pub, priv, "mailto:smartaid@example.com", testLogger())
}

func TestDeliverSuccess(t *testing.T) {
	var gotTTL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTTL = r.Header.Get("TTL")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	reg := NewRegistry(testLogger())
	reg.Add("u1", testSubscription(t, srv.URL))
	d := testDispatcher(t, reg)

	ok := d.SendMedicationDue(context.Background(), "u1", "Lisinopril", "08:00")
	assert.True(t, ok)
	assert.Equal(t, "86400", gotTTL)
	assert.True(t, reg.Has("u1"))
}

func TestDeliverGoneRemovesSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	reg := NewRegistry(testLogger())
	reg.Add("u1", testSubscription(t, srv.URL))
	d := testDispatcher(t, reg)

	ok := d.SendRefillDue(context.Background(), "u1", "Lisinopril", 5)
	assert.False(t, ok)
	// Permanent failure deregisters the user.
	assert.False(t, reg.Has("u1"))
}

func TestDeliverTransientFailureKeepsSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := NewRegistry(testLogger())
	reg.Add("u1", testSubscription(t, srv.URL))
	d := testDispatcher(t, reg)

	ok := d.SendMedicationDue(context.Background(), "u1", "Metformin", "20:00")
	assert.False(t, ok)
	assert.True(t, reg.Has("u1"))
}

func TestDeliverWithoutSubscription(t *testing.T) {
	reg := NewRegistry(testLogger())
	d := testDispatcher(t, reg)

	ok := d.Deliver(context.Background(), "nobody", Payload{Title: "x"})
	assert.False(t, ok)
}

func TestDeliverUnconfiguredFailsFast(t *testing.T) {
	reg := NewRegistry(testLogger())
	reg.Add("u1", Subscription{Endpoint: "https://push.example/u1"})
	d := NewDispatcher(reg, "", "", "mailto:smartaid@example.com", testLogger())

	ok := d.SendMedicationDue(context.Background(), "u1", "Aspirin", "09:00")
	assert.False(t, ok)
	// Inert, not destructive: the subscription is untouched.
	assert.True(t, reg.Has("u1"))
}
