package alert

import (
	"time"

	"driveguard/internal/log"
	"driveguard/pkg/analysis"
)

// Config holds the dispatcher policy.
type Config struct {
	// Enabled gates the whole dispatcher.
	Enabled bool

	// Cooldown is the minimum gap between two firings of the same
	// level. Zero means every escalation fires.
	Cooldown time.Duration
}

// Dispatcher maps distraction level transitions to alert channel
// invocations with per-level cooldown gating.
//
// Escalation is level-specific, not cumulative: SEVERE fires only the
// system channel, never re-fires WARNING or CRITICAL. The cooldown
// timestamp is written synchronously before the handler task is
// spawned, so gating stays race-free even when handler execution is
// delayed, and it is written whether or not the handler succeeds to
// prevent retry storms.
type Dispatcher struct {
	cfg      Config
	handlers map[analysis.Level]Handler
	spawner  *Spawner

	lastFired map[analysis.Level]time.Time

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewDispatcher wires the level→channel mapping:
// WARNING→visual, CRITICAL→audible, SEVERE→system.
// A nil handler leaves that level silent.
func NewDispatcher(cfg Config, visual, audible, system Handler, spawner *Spawner) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		handlers: map[analysis.Level]Handler{
			analysis.LevelWarning:  visual,
			analysis.LevelCritical: audible,
			analysis.LevelSevere:   system,
		},
		spawner:   spawner,
		lastFired: make(map[analysis.Level]time.Time),
		now:       time.Now,
	}
}

// Process fires the alert channel for the given level, subject to the
// cooldown. SAFE and a disabled dispatcher are no-ops. The call never
// blocks on handler work.
//
// Process is invoked only from the analysis loop, one call at a time,
// so the cooldown map needs no locking.
func (d *Dispatcher) Process(level analysis.Level, details Details) {
	if !d.cfg.Enabled || level == analysis.LevelSafe {
		return
	}

	handler := d.handlers[level]
	if handler == nil {
		return
	}

	now := d.now()
	if last, ok := d.lastFired[level]; ok && now.Sub(last) < d.cfg.Cooldown {
		return
	}
	// Committed before the task runs; handler failure does not undo it.
	d.lastFired[level] = now

	name := handler.Name()
	log.Info("alert fired", "level", level.String(), "channel", name)

	d.spawner.Go(name, func() {
		if err := handler.Trigger(details); err != nil {
			log.Error("alert handler failed", "channel", name, "err", err)
		}
	})
}

// Silence releases persistent alert surfaces (the visual banner, a
// playing sound) and forgets the cooldown history, so the next
// escalation fires immediately. Invoked from the analysis loop on an
// explicit reset, the same goroutine that calls Process.
func (d *Dispatcher) Silence() {
	for _, h := range d.handlers {
		if h == nil {
			continue
		}
		if c, ok := h.(interface{ ClearAlerts() error }); ok {
			if err := c.ClearAlerts(); err != nil {
				log.Warn("clearing alert surface failed", "channel", h.Name(), "err", err)
			}
		}
		if s, ok := h.(interface{ StopAlert() error }); ok {
			if err := s.StopAlert(); err != nil {
				log.Warn("stopping alert sound failed", "channel", h.Name(), "err", err)
			}
		}
	}
	d.lastFired = make(map[analysis.Level]time.Time)
}

// Close shuts the dispatcher down. In-flight handler tasks are
// abandoned.
func (d *Dispatcher) Close() {
	d.spawner.Close()
}
