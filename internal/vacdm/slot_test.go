package vacdm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pilotList = `[
	{"callsign": "DLH2AB", "vacdm": {"tobt": "2025-06-01T10:00:00.000Z", "tsat": "2025-06-01T10:05:00.000Z"}, "clearance": {"sid": "SOXI1G"}},
	{"callsign": "LOT3CM", "vacdm": {"tobt": "2025-06-01T11:20:00.000Z", "tsat": "2025-06-01T11:24:00.000Z"}, "clearance": {"sid": "LOGD2G", "dep_rwy": "29"}},
	{"callsign": "RYR1", "vacdm": {"tobt": "2025-06-01T12:00:00.000Z"}, "clearance": {}}
]`

func TestParseServers(t *testing.T) {
	servers, err := ParseServers([]string{
		"https://a.example/api/v1/pilots",
		" https://b.example/slot | query ",
		"https://c.example/api/v1/pilots|pilots",
	})
	require.NoError(t, err)
	assert.Equal(t, []Server{
		{URL: "https://a.example/api/v1/pilots", Format: FormatPilotList},
		{URL: "https://b.example/slot", Format: FormatCallsignQuery},
		{URL: "https://c.example/api/v1/pilots", Format: FormatPilotList},
	}, servers)

	_, err = ParseServers([]string{"not a url"})
	assert.Error(t, err)

	_, err = ParseServers([]string{"https://a.example|xml"})
	assert.Error(t, err)
}

func TestClient_Slot_PilotList(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, pilotList))
	defer srv.Close()

	c := NewClient(
		WithHttpClient(srv.Client()),
		WithServers([]Server{{URL: srv.URL, Format: FormatPilotList}}),
	)

	tests := []struct {
		callsign string
		want     Slot
	}{
		{
			callsign: "LOT3CM",
			want: Slot{
				TOBT:      "2025-06-01T11:20:00.000Z",
				TSAT:      "2025-06-01T11:24:00.000Z",
				SID:       "LOGD2G",
				Runway:    "29",
				HasRunway: true,
				Server:    srv.URL,
			},
		},
		{
			callsign: "DLH2AB",
			want: Slot{
				TOBT:   "2025-06-01T10:00:00.000Z",
				TSAT:   "2025-06-01T10:05:00.000Z",
				SID:    "SOXI1G",
				Server: srv.URL,
			},
		},
		{
			callsign: "RYR1",
			want: Slot{
				TOBT:   "2025-06-01T12:00:00.000Z",
				SID:    "---",
				Server: srv.URL,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.callsign, func(t *testing.T) {
			got, err := c.Slot(context.Background(), tt.callsign)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Slot_FallsThroughServers(t *testing.T) {
	failing := httptest.NewServer(jsonHandler(http.StatusServiceUnavailable, `{}`))
	defer failing.Close()

	garbage := httptest.NewServer(jsonHandler(http.StatusOK, `{"not": "a list"}`))
	defer garbage.Close()

	unknown := httptest.NewServer(jsonHandler(http.StatusOK, `[{"callsign": "OTHER"}]`))
	defer unknown.Close()

	var gotCallsign string
	query := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCallsign = r.URL.Query().Get("callsign")
		_, _ = w.Write([]byte(`{"tobt": "1020", "tsat": "1025", "sid": ""}`))
	}))
	defer query.Close()

	c := NewClient(WithServers([]Server{
		{URL: failing.URL, Format: FormatPilotList},
		{URL: garbage.URL, Format: FormatPilotList},
		{URL: unknown.URL, Format: FormatPilotList},
		{URL: query.URL + "/slotService/callsign", Format: FormatCallsignQuery},
	}))

	got, err := c.Slot(context.Background(), "LOT3CM")
	require.NoError(t, err)
	assert.Equal(t, "LOT3CM", gotCallsign)
	assert.Equal(t, Slot{
		TOBT:   "1020",
		TSAT:   "1025",
		SID:    "---",
		Server: query.URL + "/slotService/callsign",
	}, got)
}

func TestClient_Slot_NotFound(t *testing.T) {
	unknown := httptest.NewServer(jsonHandler(http.StatusOK, `[]`))
	defer unknown.Close()

	empty := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	defer empty.Close()

	c := NewClient(WithServers([]Server{
		{URL: unknown.URL, Format: FormatPilotList},
		{URL: empty.URL, Format: FormatCallsignQuery},
	}))

	_, err := c.Slot(context.Background(), "LOT3CM")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestClient_Slot_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(WithServers([]Server{{URL: "http://127.0.0.1:1", Format: FormatPilotList}}))
	_, err := c.Slot(ctx, "LOT3CM")
	assert.ErrorIs(t, err, context.Canceled)
}
