package vatsim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPilot_Airborne(t *testing.T) {
	tests := []struct {
		name  string
		pilot Pilot
		want  bool
	}{
		{name: "parked", pilot: Pilot{Altitude: 360, Groundspeed: 0}, want: false},
		{name: "taking off", pilot: Pilot{Altitude: 400, Groundspeed: 150}, want: false},
		{name: "climbing", pilot: Pilot{Altitude: 3500, Groundspeed: 210}, want: true},
		{name: "high airfield taxiing", pilot: Pilot{Altitude: 5400, Groundspeed: 15}, want: false},
		{name: "on the thresholds", pilot: Pilot{Altitude: 1000, Groundspeed: 80}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pilot.Airborne(); got != tt.want {
				t.Errorf("Airborne() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/members/1234567/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 1234567, "callsign": "LOT3CM"}`))
	})
	mux.HandleFunc("/members/7654321/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7654321}`))
	})
	mux.HandleFunc("/members/2/status", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	mux.HandleFunc("/data/pilots/1234567", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cid": 1234567, "callsign": "LOT3CM", "altitude": 12000, "groundspeed": 310, "heading": 90}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Callsign(t *testing.T) {
	srv := newServer(t)
	c := NewClient(
		WithHttpClient(srv.Client()),
		WithMembersURL(srv.URL+"/members/"),
		WithDataURL(srv.URL+"/data"),
	)

	callsign, err := c.Callsign(context.Background(), "1234567")
	require.NoError(t, err)
	assert.Equal(t, "LOT3CM", callsign)

	_, err = c.Callsign(context.Background(), "7654321")
	assert.ErrorIs(t, err, ErrOffline)

	// Unknown or disconnected members answer 404
	_, err = c.Callsign(context.Background(), "1")
	assert.ErrorIs(t, err, ErrOffline)

	_, err = c.Callsign(context.Background(), "2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOffline)
}

func TestClient_Pilot(t *testing.T) {
	srv := newServer(t)
	c := NewClient(
		WithHttpClient(srv.Client()),
		WithMembersURL(srv.URL+"/members"),
		WithDataURL(srv.URL+"/data"),
	)

	pilot, err := c.Pilot(context.Background(), "1234567")
	require.NoError(t, err)
	assert.Equal(t, Pilot{CID: 1234567, Callsign: "LOT3CM", Altitude: 12000, Groundspeed: 310}, pilot)
	assert.True(t, pilot.Airborne())
}
