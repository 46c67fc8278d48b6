package vacdm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/plvacc/vdgs/internal/httpjson"
)

// ErrSlotNotFound is returned when no slot server knows the callsign.
var ErrSlotNotFound = errors.New("no slot found")

// Format is the response shape of a slot server.
type Format int

const (
	// FormatPilotList servers return every pilot they manage as one JSON array
	FormatPilotList Format = iota

	// FormatCallsignQuery servers take ?callsign= and return one slot object
	FormatCallsignQuery
)

func (f Format) String() string {
	switch f {
	case FormatPilotList:
		return "pilots"
	case FormatCallsignQuery:
		return "query"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

type Server struct {
	URL    string
	Format Format
}

// DefaultServers are queried in order until one returns the callsign.
var DefaultServers = []Server{
	{URL: "https://app.vacdm.net/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://vacdm.vatita.net/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://cdm.vatsim-scandinavia.org/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://cdm.vatsim.fr/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://vacdm.vatprc.net/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://vacdm.vacc-austria.org/api/v1/pilots", Format: FormatPilotList},
	{URL: "https://cdm-server-production.up.railway.app/slotService/callsign", Format: FormatCallsignQuery},
}

// ParseServers parses "url" or "url|format" entries, format being "pilots" (default) or "query".
func ParseServers(entries []string) ([]Server, error) {
	servers := make([]Server, 0, len(entries))
	for _, entry := range entries {
		rawURL, format, _ := strings.Cut(entry, "|")
		rawURL = strings.TrimSpace(rawURL)

		u, err := url.Parse(rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid slot server url %q", rawURL)
		}

		s := Server{URL: rawURL}
		switch strings.TrimSpace(format) {
		case "", "pilots":
			s.Format = FormatPilotList
		case "query":
			s.Format = FormatCallsignQuery
		default:
			return nil, fmt.Errorf("unknown slot server format %q", format)
		}

		servers = append(servers, s)
	}
	return servers, nil
}

// Slot is the departure slot of one pilot.
type Slot struct {
	TOBT      string
	TSAT      string
	SID       string
	Runway    string
	HasRunway bool

	// Server is the URL of the server that knew the callsign
	Server string
}

type pilotEntry struct {
	Callsign string `json:"callsign"`
	Vacdm    struct {
		TOBT string `json:"tobt"`
		TSAT string `json:"tsat"`
	} `json:"vacdm"`
	Clearance struct {
		SID    string              `json:"sid"`
		DepRwy jsoniter.RawMessage `json:"dep_rwy"`
	} `json:"clearance"`
}

type querySlot struct {
	TOBT string `json:"tobt"`
	TSAT string `json:"tsat"`
	SID  string `json:"sid"`
}

// Slot asks every server in order and returns the first slot found for callsign.
// Servers failing or not knowing the callsign are skipped.
func (c *Client) Slot(ctx context.Context, callsign string) (Slot, error) {
	for _, server := range c.servers {
		if err := ctx.Err(); err != nil {
			return Slot{}, err
		}

		var (
			slot  Slot
			found bool
			err   error
		)
		switch server.Format {
		case FormatCallsignQuery:
			slot, found, err = c.querySlot(ctx, server.URL, callsign)
		default:
			slot, found, err = c.pilotListSlot(ctx, server.URL, callsign)
		}

		if err != nil {
			c.logger.Warn("slot server failed",
				"server", server.URL,
				"format", server.Format,
				"error", err)
			continue
		}
		if !found {
			c.logger.Debug("callsign not known to slot server",
				"server", server.URL,
				"callsign", callsign)
			continue
		}

		slot.Server = server.URL
		return slot, nil
	}

	return Slot{}, fmt.Errorf("%w for %s", ErrSlotNotFound, callsign)
}

func (c *Client) pilotListSlot(ctx context.Context, serverURL, callsign string) (Slot, bool, error) {
	pilots, err := httpjson.GetInto[[]pilotEntry](ctx, c.httpClient, serverURL)
	if err != nil {
		return Slot{}, false, err
	}

	for _, p := range pilots {
		if p.Callsign != callsign {
			continue
		}

		slot := Slot{
			TOBT: p.Vacdm.TOBT,
			TSAT: p.Vacdm.TSAT,
			SID:  orDashes(p.Clearance.SID),
		}

		// The runway is only known when the server sends the key.
		if len(p.Clearance.DepRwy) > 0 {
			slot.HasRunway = true
			slot.Runway = "??"

			var rwy string
			if err := httpjson.API.Unmarshal(p.Clearance.DepRwy, &rwy); err == nil && rwy != "" {
				slot.Runway = rwy
			}
		}

		return slot, true, nil
	}

	return Slot{}, false, nil
}

func (c *Client) querySlot(ctx context.Context, serverURL, callsign string) (Slot, bool, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return Slot{}, false, err
	}

	q := u.Query()
	q.Set("callsign", callsign)
	u.RawQuery = q.Encode()

	res, err := httpjson.GetInto[querySlot](ctx, c.httpClient, u.String())
	if err != nil {
		return Slot{}, false, err
	}

	if res.TOBT == "" && res.TSAT == "" {
		return Slot{}, false, nil
	}

	return Slot{
		TOBT: res.TOBT,
		TSAT: res.TSAT,
		SID:  orDashes(res.SID),
	}, true, nil
}

func orDashes(s string) string {
	if s == "" {
		return "---"
	}
	return s
}
