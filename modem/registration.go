package modem

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"i4.energy/across/gsmgw/at"
)

// Registration is the result of a network registration check.
type Registration int

const (
	NotRegistered Registration = iota
	Registered
	// RegistrationNoResponse means the module did not answer. The module
	// flags are left unchanged.
	RegistrationNoResponse
	// RegistrationLineBusy means the check was skipped because another
	// operation held the line.
	RegistrationLineBusy
)

func (r Registration) String() string {
	switch r {
	case NotRegistered:
		return "not registered"
	case Registered:
		return "registered"
	case RegistrationNoResponse:
		return "no response"
	case RegistrationLineBusy:
		return "line busy"
	default:
		return "unknown"
	}
}

const (
	registrationTimeout   = 5 * time.Second
	registrationInterChar = 200 * time.Millisecond
)

// CheckRegistration queries the network registration and updates the
// module flags. The first registration after start-up pushes
// ParamSetRegistered and, once the push went through, marks the module
// initialized.
//
// The error is non-nil only when the transport fails or ctx is done.
func (m *Modem) CheckRegistration(ctx context.Context) (Registration, error) {
	release, err := m.hold(LineCommand)
	if errors.Is(err, ErrLineBusy) {
		return RegistrationLineBusy, nil
	}
	if err != nil {
		return RegistrationNoResponse, err
	}
	defer release()

	outcome, err := m.query(ctx, at.CmdRegistration, registrationTimeout, registrationInterChar)
	if err != nil {
		return RegistrationNoResponse, err
	}
	if outcome != Finished {
		return RegistrationNoResponse, nil
	}

	buf := m.at.Buffer()
	if !buf.Contains(at.RegisteredHome) && !buf.Contains(at.RegisteredRoaming) {
		m.status.clear(StatusRegistered)
		return NotRegistered, nil
	}

	m.status.set(StatusRegistered)
	if !m.status.has(StatusInitialized) {
		release()

		// Left uninitialized on failure so the next check pushes again.
		if err := m.InitParam(ctx, ParamSetRegistered); err != nil {
			m.logger.Warn("post-registration parameters not pushed", zap.Error(err))
			return Registered, nil
		}
		m.status.set(StatusInitialized)
	}
	return Registered, nil
}

// WatchRegistration checks the registration every interval until ctx is
// done or the modem is closed, reporting each result to fn when fn is not
// nil. Transport failures are logged and do not stop the watch.
func (m *Modem) WatchRegistration(ctx context.Context, interval time.Duration, fn func(Registration)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reg, err := m.CheckRegistration(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if errors.Is(err, ErrAlreadyClosed) {
					return err
				}
				m.logger.Warn("registration check failed", zap.Error(err))
			}
			if fn != nil {
				fn(reg)
			}
		}
	}
}
