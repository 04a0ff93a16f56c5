package modem

import (
	"strings"

	"go.uber.org/atomic"
)

// Status is the set of module flags maintained by the driver.
type Status uint32

const (
	// StatusInitialized is set the first time the module registers and
	// the registered parameter set has been pushed.
	StatusInitialized Status = 1 << iota
	// StatusRegistered follows the last registration check.
	StatusRegistered
	// StatusUserButtonEnabled is a caller-owned flag.
	StatusUserButtonEnabled
)

// Has reports whether all flags in f are set.
func (s Status) Has(f Status) bool { return s&f == f }

func (s Status) String() string {
	var names []string
	if s.Has(StatusInitialized) {
		names = append(names, "initialized")
	}
	if s.Has(StatusRegistered) {
		names = append(names, "registered")
	}
	if s.Has(StatusUserButtonEnabled) {
		names = append(names, "user-button")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

type moduleStatus struct {
	bits atomic.Uint32
}

func (s *moduleStatus) load() Status { return Status(s.bits.Load()) }

func (s *moduleStatus) has(f Status) bool { return s.load().Has(f) }

func (s *moduleStatus) set(f Status) {
	for {
		old := s.bits.Load()
		if s.bits.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

func (s *moduleStatus) clear(f Status) {
	for {
		old := s.bits.Load()
		if s.bits.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

// Status returns a snapshot of the module flags.
func (m *Modem) Status() Status { return m.status.load() }

func (m *Modem) IsInitialized() bool { return m.status.has(StatusInitialized) }

func (m *Modem) IsRegistered() bool { return m.status.has(StatusRegistered) }

func (m *Modem) EnableUserButton() { m.status.set(StatusUserButtonEnabled) }

func (m *Modem) DisableUserButton() { m.status.clear(StatusUserButtonEnabled) }

func (m *Modem) IsUserButtonEnabled() bool { return m.status.has(StatusUserButtonEnabled) }
