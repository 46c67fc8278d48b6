package vdgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/plvacc/vdgs/internal/config"
	"github.com/plvacc/vdgs/internal/vacdm"
	"github.com/plvacc/vdgs/internal/vatsim"
)

// Members resolves a VATSIM member to their live session. *vatsim.Client satisfies it.
type Members interface {
	Callsign(ctx context.Context, cid string) (string, error)
	Pilot(ctx context.Context, cid string) (vatsim.Pilot, error)
}

// Slots looks up departure slots. *vacdm.Client satisfies it.
type Slots interface {
	Slot(ctx context.Context, callsign string) (vacdm.Slot, error)
}

// Monitor keeps the board of one pilot up to date
type Monitor struct {
	members Members
	slots   Slots
	logger  *slog.Logger
	config  *config.Config
	out     io.Writer
	now     func() time.Time
}

// NewMonitor creates a monitor rendering to out
func NewMonitor(members Members, slots Slots, logger *slog.Logger, cfg *config.Config, out io.Writer) *Monitor {
	return &Monitor{
		members: members,
		slots:   slots,
		logger:  logger,
		config:  cfg,
		out:     out,
		now:     time.Now,
	}
}

// Run refreshes the board immediately and then on every refresh interval until ctx is done
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("starting board refresh loop",
		"cid", m.config.VatsimCID,
		"interval", m.config.RefreshInterval,
		"skip_airborne_check", m.config.SkipAirborneCheck)

	// Run initial refresh immediately
	if err := m.RefreshOnce(ctx); err != nil {
		m.logger.Error("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("board refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.RefreshOnce(ctx); err != nil {
				m.logger.Error("refresh failed", "error", err)
			}
		}
	}
}

// RefreshOnce resolves the pilot, looks up their slot and renders the board
func (m *Monitor) RefreshOnce(ctx context.Context) error {
	startTime := time.Now()
	cid := m.config.VatsimCID

	callsign, err := m.members.Callsign(ctx, cid)
	if errors.Is(err, vatsim.ErrOffline) {
		m.logger.Warn("member not connected", "cid", cid)
		return m.render(Board{})
	}
	if err != nil {
		return fmt.Errorf("failed to resolve callsign: %w", err)
	}

	if m.airborne(ctx, cid) {
		m.logger.Info("pilot airborne, slot display off", "callsign", callsign)
		return m.render(Board{Callsign: callsign, Departed: true})
	}

	slot, err := m.slots.Slot(ctx, callsign)
	if errors.Is(err, vacdm.ErrSlotNotFound) {
		m.logger.Warn("no slot server knows the callsign", "callsign", callsign)
		slot = vacdm.Slot{}
	} else if err != nil {
		return fmt.Errorf("failed to look up slot: %w", err)
	}

	m.logger.Info("board refreshed",
		"duration", time.Since(startTime),
		"callsign", callsign,
		"tobt", FormatTimeShort(slot.TOBT),
		"tsat", FormatTimeShort(slot.TSAT),
		"sid", slot.SID,
		"server", slot.Server)

	return m.render(Board{Callsign: callsign, Slot: slot})
}

// airborne reports whether the pilot has departed. Failed checks count as not airborne.
func (m *Monitor) airborne(ctx context.Context, cid string) bool {
	if m.config.SkipAirborneCheck {
		return false
	}

	pilot, err := m.members.Pilot(ctx, cid)
	if err != nil {
		m.logger.Warn("airborne check failed", "cid", cid, "error", err)
		return false
	}

	m.logger.Debug("airborne check",
		"altitude", pilot.Altitude,
		"groundspeed", pilot.Groundspeed)

	return pilot.Airborne()
}

func (m *Monitor) render(b Board) error {
	if err := b.Render(m.out, m.now()); err != nil {
		return fmt.Errorf("failed to render board: %w", err)
	}
	return nil
}
