package modem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/gsmgw/at"
)

// SMSFilter selects stored messages by status.
type SMSFilter int

const (
	SMSUnread SMSFilter = iota
	SMSRead
	SMSAll
)

func (f SMSFilter) status() string {
	switch f {
	case SMSUnread:
		return at.StatusUnread
	case SMSRead:
		return at.StatusRead
	default:
		return at.StatusAll
	}
}

func (f SMSFilter) String() string {
	switch f {
	case SMSUnread:
		return "unread"
	case SMSRead:
		return "read"
	default:
		return "all"
	}
}

// SMSStatus classifies a stored message.
type SMSStatus int

const (
	// NoSMS means the position is empty.
	NoSMS SMSStatus = iota
	UnreadSMS
	ReadSMS
	// OtherSMS is any other stored status, such as an unsent draft.
	OtherSMS
	AuthorizedSMS
	UnauthorizedSMS
)

func (s SMSStatus) String() string {
	switch s {
	case NoSMS:
		return "none"
	case UnreadSMS:
		return "unread"
	case ReadSMS:
		return "read"
	case OtherSMS:
		return "other"
	case AuthorizedSMS:
		return "authorized"
	case UnauthorizedSMS:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// SMS represents a text message stored on the SIM.
type SMS struct {
	Position int
	Status   SMSStatus
	Number   string
	Text     string
}

const smsSendRounds = 3

var cmdSMSPrompt = Command{Timeout: time.Second, InterChar: 50 * time.Millisecond, Expect: at.PromptMark, Attempts: 1}

// IsSMSPresent returns the position of the first stored message matching
// filter, or 0 when there is none.
func (m *Modem) IsSMSPresent(ctx context.Context, filter SMSFilter) (int, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := m.listSMS(ctx, filter); err != nil {
		return 0, err
	}

	resp := m.at.Buffer().String()
	i := strings.Index(resp, at.SMSList)
	if i < 0 {
		return 0, nil
	}
	return leadingInt(resp[i+len(at.SMSList):]), nil
}

// ListSMS returns the stored messages matching filter. Messages beyond
// the receive buffer capacity are not returned.
func (m *Modem) ListSMS(ctx context.Context, filter SMSFilter) ([]SMS, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.listSMS(ctx, filter); err != nil {
		return nil, err
	}
	return parseSMSList(m.at.Buffer().Bytes()), nil
}

func (m *Modem) listSMS(ctx context.Context, filter SMSFilter) error {
	cmd := Command{Text: at.ListSMS(filter.status()), Timeout: 5 * time.Second, InterChar: 1500 * time.Millisecond, Expect: at.OK, Attempts: 1}
	outcome, err := m.at.SendAndWait(ctx, cmd)
	if err != nil {
		return err
	}
	return outcome.Err()
}

// GetSMS reads the message stored at pos. maxLen is the capacity of the
// caller's text buffer including its terminator: a body of maxLen bytes or
// more is cut to maxLen-1 bytes. A maxLen below 1 disables truncation.
//
// Reading an unread message marks it read on the SIM.
func (m *Modem) GetSMS(ctx context.Context, pos, maxLen int) (SMS, error) {
	if err := checkPosition(pos); err != nil {
		return SMS{}, err
	}

	release, err := m.hold(LineCommand)
	if err != nil {
		return SMS{}, err
	}
	defer release()

	cmd := Command{Text: at.ReadSMS(pos), Timeout: 5 * time.Second, InterChar: 100 * time.Millisecond, Expect: at.SMSRead, Attempts: 1}
	outcome, err := m.at.SendAndWait(ctx, cmd)
	if err != nil {
		return SMS{}, err
	}
	switch outcome {
	case NoResponse:
		return SMS{}, ErrNoResponse
	case ResponseMismatch:
		return SMS{Position: pos, Status: NoSMS}, nil
	}

	sms := parseSMS(m.at.Buffer().String(), maxLen)
	sms.Position = pos
	return sms, nil
}

// GetAuthorizedSMS reads the message stored at pos like GetSMS and checks
// its sender against the phonebook positions of r. A found message is
// reported as AuthorizedSMS or UnauthorizedSMS.
func (m *Modem) GetAuthorizedSMS(ctx context.Context, pos, maxLen int, r AuthRange) (SMS, error) {
	sms, err := m.GetSMS(ctx, pos, maxLen)
	if err != nil || sms.Status == NoSMS {
		return sms, err
	}

	_, ok, err := m.authorize(ctx, sms.Number, r)
	if err != nil {
		return sms, fmt.Errorf("authorize sender: %w", err)
	}
	if ok {
		sms.Status = AuthorizedSMS
	} else {
		sms.Status = UnauthorizedSMS
	}
	return sms, nil
}

// DeleteSMS deletes the message stored at pos. It reports false when the
// module refused the deletion.
func (m *Modem) DeleteSMS(ctx context.Context, pos int) (bool, error) {
	if err := checkPosition(pos); err != nil {
		return false, err
	}

	cmd := okCommand(at.DeleteSMS(pos), 5*time.Second, 50*time.Millisecond, 1)
	outcome, err := m.exchange(ctx, cmd)
	if err != nil {
		return false, err
	}
	switch outcome {
	case ResponseMatched:
		return true, nil
	case ResponseMismatch:
		return false, nil
	default:
		return false, ErrNoResponse
	}
}

// SendSMS sends a text message to number. The submission is tried up to
// three times.
//
// The message is sent in text mode (not PDU mode). The recipient should be
// in international format (e.g., "+1234567890"). In dry-run mode the message
// is aborted at the input prompt instead of being submitted.
func (m *Modem) SendSMS(ctx context.Context, number, text string) error {
	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	var last CommandOutcome
	for round := 1; round <= smsSendRounds; round++ {
		last, err = m.submitSMS(ctx, number, text)
		if err != nil {
			return fmt.Errorf("send SMS to %s: %w", number, err)
		}
		if last == ResponseMatched {
			return nil
		}
	}
	return fmt.Errorf("send SMS to %s: %w", number, last.Err())
}

// SendSMSToPosition sends a text message to the number stored at a SIM
// phonebook position.
func (m *Modem) SendSMSToPosition(ctx context.Context, pos int, text string) error {
	number, err := m.GetPhoneNumber(ctx, pos)
	if err != nil {
		return fmt.Errorf("phonebook position %d: %w", pos, err)
	}
	return m.SendSMS(ctx, number, text)
}

func (m *Modem) submitSMS(ctx context.Context, number, text string) (CommandOutcome, error) {
	prompt := cmdSMSPrompt
	prompt.Text = at.SendSMS(number)
	outcome, err := m.at.SendAndWait(ctx, prompt)
	if err != nil || outcome != ResponseMatched {
		return outcome, err
	}

	terminator, timeout, interChar, expect := at.CtrlZ, 7*time.Second, 5*time.Second, at.SMSSent
	if m.config.smsDryRun {
		terminator, interChar, expect = at.Esc, 50*time.Millisecond, at.OK
	}

	if err := m.at.Write([]byte(text + terminator)); err != nil {
		return NoResponse, err
	}
	return m.at.Expect(ctx, timeout, interChar, expect)
}

// parseSMS extracts a message from an AT+CMGR response such as
//
//	+CMGR: "REC UNREAD","+12025550123",,"24/01/01,00:00:00+00"\r\nHello\r\nOK
func parseSMS(resp string, maxLen int) SMS {
	var sms SMS
	switch {
	case strings.Contains(resp, at.StatusUnread):
		sms.Status = UnreadSMS
	case strings.Contains(resp, at.StatusRead):
		sms.Status = ReadSMS
	default:
		sms.Status = OtherSMS
	}

	if i := strings.Index(resp, at.SMSRead); i >= 0 {
		resp = resp[i:]
	}

	// The number is the quoted field after the status.
	comma := strings.IndexByte(resp, ',')
	if comma < 0 || comma+2 > len(resp) {
		return sms
	}
	rest := resp[comma+2:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return sms
	}
	sms.Number = rest[:end]

	// The body is the line following the header.
	rest = rest[end:]
	lf := strings.IndexByte(rest, '\n')
	if lf < 0 {
		return sms
	}
	body := rest[lf+1:]
	if cr := strings.IndexByte(body, '\r'); cr >= 0 {
		body = body[:cr]
	}
	sms.Text = truncate(body, maxLen)
	return sms
}

// parseSMSList extracts the messages of an AT+CMGL response. Each record
// is a header line followed by one body line.
func parseSMSList(resp []byte) []SMS {
	var (
		list    []SMS
		current *SMS
	)
	for _, line := range at.Lines(resp) {
		switch {
		case strings.HasPrefix(line, at.SMSList):
			sms := parseSMSHeader(line)
			list = append(list, sms)
			current = &list[len(list)-1]
		case at.Classify(line) == at.TypeData && current != nil:
			current.Text = line
			current = nil
		default:
			current = nil
		}
	}
	return list
}

// parseSMSHeader parses `+CMGL: 1,"REC READ","+12025550123",,"24/01/01,..."`.
func parseSMSHeader(line string) SMS {
	fields := strings.Split(strings.TrimSpace(strings.TrimPrefix(line, at.SMSList)), ",")

	sms := SMS{Position: leadingInt(fields[0]), Status: OtherSMS}
	if len(fields) > 1 {
		switch fields[1] {
		case at.StatusUnread:
			sms.Status = UnreadSMS
		case at.StatusRead:
			sms.Status = ReadSMS
		}
	}
	if len(fields) > 2 {
		sms.Number = strings.Trim(fields[2], `"`)
	}
	return sms
}

func truncate(s string, maxLen int) string {
	if maxLen > 0 && len(s) >= maxLen {
		return s[:maxLen-1]
	}
	return s
}

// leadingInt parses the decimal number at the start of s after optional
// spaces. It returns 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " ")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
