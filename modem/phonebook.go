package modem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"i4.energy/across/gsmgw/at"
)

// AuthRange is the span of SIM phonebook positions whose numbers are
// authorized to call or text the module. The zero AuthRange authorizes
// every number.
type AuthRange struct {
	First int
	Last  int
}

// Bypass reports whether the range authorizes every number.
func (r AuthRange) Bypass() bool { return r.First == 0 && r.Last == 0 }

const (
	phonebookTimeout   = 5 * time.Second
	phonebookInterChar = 50 * time.Millisecond
)

func checkPosition(pos int) error {
	if pos < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	return nil
}

// GetPhoneNumber returns the number stored at a SIM phonebook position.
// An empty position yields ErrNotFound.
func (m *Modem) GetPhoneNumber(ctx context.Context, pos int) (string, error) {
	if err := checkPosition(pos); err != nil {
		return "", err
	}

	release, err := m.hold(LineCommand)
	if err != nil {
		return "", err
	}
	defer release()

	cmd := Command{Text: at.ReadPhonebook(pos), Timeout: phonebookTimeout, InterChar: phonebookInterChar, Expect: at.PhonebookRead, Attempts: 1}
	outcome, err := m.at.SendAndWait(ctx, cmd)
	if err != nil {
		return "", err
	}
	switch outcome {
	case NoResponse:
		return "", ErrNoResponse
	case ResponseMismatch:
		return "", ErrNotFound
	}

	resp := m.at.Buffer().String()
	number, ok := at.Quoted(resp[strings.Index(resp, at.PhonebookRead):])
	if !ok || number == "" {
		return "", ErrNotFound
	}
	return number, nil
}

// WritePhoneNumber stores number at a SIM phonebook position.
func (m *Modem) WritePhoneNumber(ctx context.Context, pos int, number string) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	return m.expect(ctx, okCommand(at.WritePhonebook(pos, number), phonebookTimeout, phonebookInterChar, 1))
}

// DeletePhoneNumber clears a SIM phonebook position.
func (m *Modem) DeletePhoneNumber(ctx context.Context, pos int) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	return m.expect(ctx, okCommand(at.DeletePhonebook(pos), phonebookTimeout, phonebookInterChar, 1))
}

// ComparePhoneNumber reports whether the phonebook position holds exactly
// number. An empty position never matches.
func (m *Modem) ComparePhoneNumber(ctx context.Context, pos int, number string) (bool, error) {
	stored, err := m.GetPhoneNumber(ctx, pos)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == number, nil
}

// authorize searches the phonebook positions of r for number and returns
// the first matching position. Positions that cannot be read are skipped.
// The caller must not hold the line.
func (m *Modem) authorize(ctx context.Context, number string, r AuthRange) (int, bool, error) {
	if r.Bypass() {
		return 0, true, nil
	}

	for pos := max(r.First, 1); pos <= r.Last; pos++ {
		match, err := m.ComparePhoneNumber(ctx, pos, number)
		if errors.Is(err, ErrNoResponse) {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		if match {
			return pos, true, nil
		}
	}
	return 0, false, nil
}
