package modem

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"i4.energy/across/gsmgw/at"
)

// ParamSet selects a group of configuration commands pushed by InitParam.
type ParamSet int

const (
	// ParamSetBoot is pushed right after power-on.
	ParamSetBoot ParamSet = iota
	// ParamSetRegistered is pushed once, when the module first registers
	// to the network. It is followed by InitSMSMemory.
	ParamSetRegistered
)

func (p ParamSet) String() string {
	switch p {
	case ParamSetBoot:
		return "boot"
	case ParamSetRegistered:
		return "registered"
	default:
		return fmt.Sprintf("ParamSet(%d)", int(p))
	}
}

func okCommand(text string, timeout, interChar time.Duration, attempts int) Command {
	return Command{Text: text, Timeout: timeout, InterChar: interChar, Expect: at.OK, Attempts: attempts}
}

var paramSets = map[ParamSet][]Command{
	ParamSetBoot: {
		okCommand(at.CmdFactoryReset, time.Second, 50*time.Millisecond, 5),
		okCommand(at.CmdEchoOff, 500*time.Millisecond, 50*time.Millisecond, 5),
		// closes a bearer left open by a previous session
		okCommand(at.CmdBearerClose, 900*time.Millisecond, 100*time.Millisecond, 2),
	},
	ParamSetRegistered: {
		okCommand(at.CmdCallerID, 500*time.Millisecond, 50*time.Millisecond, 5),
		okCommand(at.CmdExtendedRing, 500*time.Millisecond, 50*time.Millisecond, 5),
		okCommand(at.CmdNumericErrors, 500*time.Millisecond, 50*time.Millisecond, 5),
		okCommand(at.CmdSetTextMode, 500*time.Millisecond, 50*time.Millisecond, 5),
		okCommand(at.CmdPhonebookSIM, time.Second, 50*time.Millisecond, 5),
	},
}

var (
	cmdSMSNotifyOff  = okCommand(at.CmdSMSNotifyOff, time.Second, 50*time.Millisecond, 2)
	cmdSMSStorageSIM = Command{Text: at.CmdSMSStorageSIM, Timeout: time.Second, InterChar: time.Second, Expect: at.SMSStorage, Attempts: 10}
)

// InitParam pushes a parameter set. A command the module rejects is logged
// and skipped; the push only fails when the line is busy or the transport
// breaks.
func (m *Modem) InitParam(ctx context.Context, set ParamSet) error {
	cmds, ok := paramSets[set]
	if !ok {
		return fmt.Errorf("unknown parameter set %v", set)
	}

	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	for _, cmd := range cmds {
		if err := m.push(ctx, cmd); err != nil {
			return fmt.Errorf("init %v parameters: %w", set, err)
		}
	}

	if set == ParamSetRegistered {
		release()
		return m.InitSMSMemory(ctx)
	}
	return nil
}

// InitSMSMemory disables new message indications and selects the SIM as
// message storage.
func (m *Modem) InitSMSMemory(ctx context.Context) error {
	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	for _, cmd := range []Command{cmdSMSNotifyOff, cmdSMSStorageSIM} {
		if err := m.push(ctx, cmd); err != nil {
			return fmt.Errorf("init SMS memory: %w", err)
		}
	}
	return nil
}

func (m *Modem) push(ctx context.Context, cmd Command) error {
	outcome, err := m.at.SendAndWait(ctx, cmd)
	if err != nil {
		return err
	}
	if outcome != ResponseMatched {
		m.logger.Warn("parameter not accepted",
			zap.String("command", cmd.Text),
			zap.Stringer("outcome", outcome))
	}
	return nil
}
