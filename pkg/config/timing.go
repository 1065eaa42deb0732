package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/dirtycheck/pkg/dirty"
)

// SectionIDTiming is the identifier for the timing section
const SectionIDTiming = "timing"

// TimingSection bounds the observer's waits.
type TimingSection struct {
	Interval    time.Duration `json:"interval"`
	PanelProbe  time.Duration `json:"panel_probe"`
	EntityProbe time.Duration `json:"entity_probe"`
	Settle      time.Duration `json:"settle"`
	mu          sync.RWMutex
}

// NewTimingSection creates a timing section with the observer defaults.
func NewTimingSection() *TimingSection {
	s := &TimingSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *TimingSection) ID() string {
	return SectionIDTiming
}

// Title returns the section title.
func (s *TimingSection) Title() string {
	return "Timing"
}

// Description returns the section description.
func (s *TimingSection) Description() string {
	return "Polling interval and the bounds for save panel, entity and settle waits."
}

// Data returns the current configuration data.
func (s *TimingSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"interval":     s.Interval.String(),
		"panel_probe":  s.PanelProbe.String(),
		"entity_probe": s.EntityProbe.String(),
		"settle":       s.Settle.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *TimingSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var target *time.Duration
		switch key {
		case "interval":
			target = &s.Interval
		case "panel_probe":
			target = &s.PanelProbe
		case "entity_probe":
			target = &s.EntityProbe
		case "settle":
			target = &s.Settle
		default:
			continue
		}

		d, err := durationValue(key, value)
		if err != nil {
			return err
		}
		*target = d
	}
	return nil
}

// Validate validates the current configuration.
func (s *TimingSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, d := range map[string]time.Duration{
		"interval":     s.Interval,
		"panel_probe":  s.PanelProbe,
		"entity_probe": s.EntityProbe,
		"settle":       s.Settle,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", key, d)
		}
	}
	if s.Interval > s.PanelProbe {
		return fmt.Errorf("interval %v must not exceed panel_probe %v", s.Interval, s.PanelProbe)
	}
	if s.Settle < s.PanelProbe {
		return fmt.Errorf("settle %v must be at least panel_probe %v", s.Settle, s.PanelProbe)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *TimingSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := dirty.DefaultTiming()
	s.Interval = d.Interval
	s.PanelProbe = d.PanelProbe
	s.EntityProbe = d.EntityProbe
	s.Settle = d.Settle
}

// Timing converts the section into observer timing.
func (s *TimingSection) Timing() dirty.Timing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return dirty.Timing{
		Interval:    s.Interval,
		PanelProbe:  s.PanelProbe,
		EntityProbe: s.EntityProbe,
		Settle:      s.Settle,
	}
}
