package alert

import (
	"fmt"

	"driveguard/internal/log"
)

// VisualHandler drives the in-cab display channel. The rendering
// mechanism is external; Show is the hook into it.
type VisualHandler struct {
	Enabled bool

	// Show presents the warning to the driver. If nil, the alert is
	// only logged.
	Show func(details Details) error

	// Clear removes any displayed warning. Optional.
	Clear func() error
}

// Name implements Handler.
func (h *VisualHandler) Name() string { return "visual" }

// Trigger implements Handler.
func (h *VisualHandler) Trigger(details Details) error {
	if !h.Enabled {
		return nil
	}
	log.Warn("visual warning displayed", "details", fmt.Sprint(details))
	if h.Show != nil {
		return h.Show(details)
	}
	return nil
}

// ClearAlerts removes any active visual warning.
func (h *VisualHandler) ClearAlerts() error {
	if !h.Enabled || h.Clear == nil {
		return nil
	}
	return h.Clear()
}

// AudibleHandler drives the sound channel.
type AudibleHandler struct {
	Enabled   bool
	SoundPath string

	// Play plays the alert sample. If nil, the alert is only logged.
	Play func(path string, details Details) error

	// Stop cuts an in-progress sound. Optional.
	Stop func() error
}

// Name implements Handler.
func (h *AudibleHandler) Name() string { return "audible" }

// Trigger implements Handler.
func (h *AudibleHandler) Trigger(details Details) error {
	if !h.Enabled {
		return nil
	}
	log.Error("critical audible alert playing", "details", fmt.Sprint(details))
	if h.Play != nil {
		return h.Play(h.SoundPath, details)
	}
	return nil
}

// StopAlert cuts the current alert sound.
func (h *AudibleHandler) StopAlert() error {
	if !h.Enabled || h.Stop == nil {
		return nil
	}
	return h.Stop()
}

// SystemHandler drives emergency system measures. Interventions (brake
// assist, lane keeping) live outside this process; Intervene is the
// hook, LogIncident records the occurrence for later review.
type SystemHandler struct {
	Enabled bool

	// Intervene triggers the emergency measures. If nil, the alert is
	// only logged.
	Intervene func(details Details) error

	// LogIncident persists the incident. Optional.
	LogIncident func(details Details) error
}

// Name implements Handler.
func (h *SystemHandler) Name() string { return "system" }

// Trigger implements Handler.
func (h *SystemHandler) Trigger(details Details) error {
	if !h.Enabled {
		return nil
	}
	log.Error("emergency measures triggered", "details", fmt.Sprint(details))

	if h.LogIncident != nil {
		if err := h.LogIncident(details); err != nil {
			log.Error("incident logging failed", "err", err)
		}
	}
	if h.Intervene != nil {
		return h.Intervene(details)
	}
	return nil
}
