package vdgs

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/plvacc/vdgs/internal/vacdm"
)

const (
	departedLine   = "DEPARTED - vACDM OFF"
	noCallsignLine = "NO CALLSIGN"
)

// Board is what the VDGS shows for one pilot
type Board struct {
	Callsign string
	Slot     vacdm.Slot
	Departed bool
}

// Lines renders the board at now. The offset line is the signed number of minutes since TSAT.
func (b Board) Lines(now time.Time) []string {
	if b.Departed {
		return []string{departedLine}
	}
	if b.Callsign == "" {
		return []string{noCallsignLine}
	}

	lines := []string{
		b.Callsign,
		"TOBT " + FormatTimeShort(b.Slot.TOBT),
		"TSAT " + FormatTimeShort(b.Slot.TSAT),
	}

	if tsat, ok := ParseTime(b.Slot.TSAT, now); ok {
		diff := int(now.Sub(tsat) / time.Minute)
		if diff > 0 {
			lines = append(lines, "+"+strconv.Itoa(diff))
		} else {
			lines = append(lines, strconv.Itoa(diff))
		}
	}

	if b.Slot.HasRunway {
		lines = append(lines, "PLANNED RWY "+b.Slot.Runway)
	}

	lines = append(lines, "SID "+b.Slot.SID)
	return lines
}

// Render writes the board followed by an empty line
func (b Board) Render(w io.Writer, now time.Time) error {
	_, err := fmt.Fprintf(w, "%s\n\n", strings.Join(b.Lines(now), "\n"))
	return err
}
