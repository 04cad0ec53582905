package pill

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdentifyConstrainedToSchedule(t *testing.T) {
	id := NewIdentifier(nil, 1, testLogger())

	scheduled := []string{"Lisinopril", "Metformin"}
	for i := 0; i < 50; i++ {
		res := id.Identify(context.Background(), nil, scheduled)
		assert.Contains(t, scheduled, res.PillName)
		assert.GreaterOrEqual(t, res.Confidence, 80)
		assert.LessOrEqual(t, res.Confidence, 99)
	}
}

func TestIdentifyFallsBackToFullCatalog(t *testing.T) {
	id := NewIdentifier(nil, 1, testLogger())

	// Nothing scheduled matches the catalog, so any catalog pill is valid.
	res := id.Identify(context.Background(), nil, []string{"Unlisted Compound"})
	require.NotEmpty(t, res.PillName)

	found := false
	for _, p := range Catalog {
		if p.Name == res.PillName {
			found = true
			assert.Equal(t, p.Type, res.PillType)
			assert.Equal(t, p.Image, res.PillImage)
			assert.Equal(t, p.CommonFor, res.CommonFor)
		}
	}
	assert.True(t, found)
}

func TestIdentifyPrefersInferenceBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Aspirin","type":"beige-oval","confidence":93}`))
	}))
	defer srv.Close()

	client := NewInferenceClient(srv.URL, "sekrit", 60, testLogger())
	id := NewIdentifier(client, 1, testLogger())

	res := id.Identify(context.Background(), []byte("fake-image"), []string{"Lisinopril"})
	assert.Equal(t, "Aspirin", res.PillName)
	assert.Equal(t, 93, res.Confidence)
	assert.Equal(t, "Heart Health", res.CommonFor)
	assert.Equal(t, beigeTabletImg, res.PillImage)
}

func TestIdentifyFallsBackWhenInferenceFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewInferenceClient(srv.URL, "", 60, testLogger())
	id := NewIdentifier(client, 1, testLogger())

	res := id.Identify(context.Background(), nil, []string{"Gabapentin"})
	assert.Equal(t, "Gabapentin", res.PillName)
}

func TestNewInferenceClientDisabled(t *testing.T) {
	assert.Nil(t, NewInferenceClient("", "key", 60, testLogger()))
}
