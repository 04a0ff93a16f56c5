package modem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"i4.energy/across/gsmgw/at"
)

// CallStatus classifies the call state of the module.
type CallStatus int

const (
	CallNone CallStatus = iota
	// CallIncomingVoice is reported by CallStatus, which cannot tell
	// whether the caller is authorized.
	CallIncomingVoice
	CallActiveVoice
	CallIncomingVoiceAuthorized
	CallIncomingVoiceUnauthorized
	CallIncomingDataAuthorized
	CallIncomingDataUnauthorized
	CallActiveData
	// CallOther is any listed call not matching a known pattern, such as a
	// held or multiparty call.
	CallOther
)

func (s CallStatus) String() string {
	switch s {
	case CallNone:
		return "none"
	case CallIncomingVoice:
		return "incoming voice"
	case CallActiveVoice:
		return "active voice"
	case CallIncomingVoiceAuthorized:
		return "incoming voice authorized"
	case CallIncomingVoiceUnauthorized:
		return "incoming voice unauthorized"
	case CallIncomingDataAuthorized:
		return "incoming data authorized"
	case CallIncomingDataUnauthorized:
		return "incoming data unauthorized"
	case CallActiveData:
		return "active data"
	case CallOther:
		return "other"
	default:
		return "unknown"
	}
}

// Call describes the current call as reported by CallStatusWithAuth.
type Call struct {
	Status CallStatus
	// Number is the remote party, empty when withheld or without a call.
	Number string
	// Position is the phonebook position that authorized an incoming call,
	// 0 when the call was not authorized through the phonebook.
	Position int
}

// MaxSpeakerVolume is the loudest speaker level.
const MaxSpeakerVolume = 14

var (
	cmdActivityStatus = Command{Text: at.CmdActivityStatus, Timeout: 5 * time.Second, InterChar: 200 * time.Millisecond, Attempts: 1}
	cmdListCalls      = Command{Text: at.CmdListCalls, Timeout: 5 * time.Second, InterChar: 1500 * time.Millisecond, Expect: at.OKLine, Attempts: 1}
	cmdAnswer         = okCommand(at.CmdAnswer, time.Second, 100*time.Millisecond, 2)
	cmdHangUp         = okCommand(at.CmdHangUp, time.Second, 100*time.Millisecond, 2)
)

// CallStatus returns the module activity from AT+CPAS.
func (m *Modem) CallStatus(ctx context.Context) (CallStatus, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return CallNone, err
	}
	defer release()

	outcome, err := m.query(ctx, cmdActivityStatus.Text, cmdActivityStatus.Timeout, cmdActivityStatus.InterChar)
	if err != nil {
		return CallNone, err
	}
	if outcome != Finished {
		return CallNone, ErrNoResponse
	}

	switch buf := m.at.Buffer(); {
	case buf.Contains(at.ActivityReady):
		return CallNone, nil
	case buf.Contains(at.ActivityRinging):
		return CallIncomingVoice, nil
	case buf.Contains(at.ActivityInCall):
		return CallActiveVoice, nil
	default:
		return CallNone, nil
	}
}

// CallStatusWithAuth lists the current call and, for an incoming call,
// checks the caller against the phonebook positions of r.
func (m *Modem) CallStatusWithAuth(ctx context.Context, r AuthRange) (Call, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return Call{}, err
	}
	defer release()

	outcome, err := m.at.SendAndWait(ctx, cmdListCalls)
	if err != nil {
		return Call{}, err
	}
	if err := outcome.Err(); err != nil {
		return Call{}, err
	}

	call, incoming := parseCallList(m.at.Buffer().String())
	if !incoming {
		return call, nil
	}

	release()
	pos, ok, err := m.authorize(ctx, call.Number, r)
	if err != nil {
		return call, fmt.Errorf("authorize caller: %w", err)
	}
	if ok {
		call.Position = pos
		switch call.Status {
		case CallIncomingVoiceUnauthorized:
			call.Status = CallIncomingVoiceAuthorized
		case CallIncomingDataUnauthorized:
			call.Status = CallIncomingDataAuthorized
		}
	}
	return call, nil
}

// parseCallList classifies an AT+CLCC response. Incoming calls are
// reported unauthorized.
func parseCallList(resp string) (call Call, incoming bool) {
	switch {
	case strings.Contains(resp, at.CallIncomingVoice):
		call.Status, incoming = CallIncomingVoiceUnauthorized, true
	case strings.Contains(resp, at.CallIncomingData):
		call.Status, incoming = CallIncomingDataUnauthorized, true
	case strings.Contains(resp, at.CallActiveVoiceOut), strings.Contains(resp, at.CallActiveVoiceIn):
		call.Status = CallActiveVoice
	case strings.Contains(resp, at.CallActiveData):
		call.Status = CallActiveData
	case strings.Contains(resp, at.CallList):
		call.Status = CallOther
	default:
		return Call{Status: CallNone}, false
	}

	if i := strings.Index(resp, at.CallList); i >= 0 {
		call.Number, _ = at.Quoted(resp[i:])
	}
	return call, incoming
}

// Dial places a voice call to number.
func (m *Modem) Dial(ctx context.Context, number string) error {
	if number == "" {
		return errors.New("dial: empty number")
	}
	return m.expect(ctx, okCommand(at.Dial(number), 10*time.Second, 200*time.Millisecond, 1))
}

// DialPosition places a voice call to the number stored at a SIM phonebook
// position.
func (m *Modem) DialPosition(ctx context.Context, pos int) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	return m.expect(ctx, okCommand(at.DialPosition(pos), 10*time.Second, 200*time.Millisecond, 1))
}

// PickUp answers an incoming call.
func (m *Modem) PickUp(ctx context.Context) error {
	return m.expect(ctx, cmdAnswer)
}

// HangUp ends the current call.
func (m *Modem) HangUp(ctx context.Context) error {
	return m.expect(ctx, cmdHangUp)
}

// SetSpeakerVolume sets the speaker level, clamped to 0..MaxSpeakerVolume,
// and returns the level applied.
func (m *Modem) SetSpeakerVolume(ctx context.Context, level int) (int, error) {
	level = min(max(level, 0), MaxSpeakerVolume)
	if err := m.expect(ctx, okCommand(at.SpeakerVolume(level), 10*time.Second, 50*time.Millisecond, 1)); err != nil {
		return int(m.speakerVolume.Load()), err
	}
	m.speakerVolume.Store(int32(level))
	return level, nil
}

// SpeakerVolume returns the last level applied by SetSpeakerVolume.
func (m *Modem) SpeakerVolume() int { return int(m.speakerVolume.Load()) }

func (m *Modem) IncSpeakerVolume(ctx context.Context) (int, error) {
	return m.SetSpeakerVolume(ctx, m.SpeakerVolume()+1)
}

func (m *Modem) DecSpeakerVolume(ctx context.Context) (int, error) {
	return m.SetSpeakerVolume(ctx, m.SpeakerVolume()-1)
}

// SendDTMF plays a DTMF tone during an active call. Valid tones are the
// digits, '*', '#' and 'A' to 'D'.
func (m *Modem) SendDTMF(ctx context.Context, tone rune) error {
	if !strings.ContainsRune("0123456789*#ABCD", tone) {
		return fmt.Errorf("invalid DTMF tone %q", tone)
	}
	return m.expect(ctx, okCommand(at.DTMF(tone), time.Second, 50*time.Millisecond, 1))
}
