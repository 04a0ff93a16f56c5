package at

import "fmt"

// Command builders for parameterised AT commands. Positions and numbers are
// inserted verbatim; validation is the caller's job.

func EnterPIN(pin string) string { return fmt.Sprintf(`AT+CPIN="%s"`, pin) }

func Dial(number string) string { return fmt.Sprintf("ATD%s;", number) }

// DialPosition dials the number stored at a SIM phonebook position.
func DialPosition(pos int) string { return fmt.Sprintf(`ATD>"SM" %d;`, pos) }

func SpeakerVolume(level int) string { return fmt.Sprintf("AT+CLVL=%d", level) }

func DTMF(tone rune) string { return fmt.Sprintf("AT+VTS=%c", tone) }

func SendSMS(number string) string { return fmt.Sprintf(`AT+CMGS="%s"`, number) }

// ListSMS lists stored messages. status is one of StatusUnread, StatusRead
// or `"ALL"`, quotes included.
func ListSMS(status string) string { return "AT+CMGL=" + status }

func ReadSMS(pos int) string { return fmt.Sprintf("AT+CMGR=%d", pos) }

func DeleteSMS(pos int) string { return fmt.Sprintf("AT+CMGD=%d", pos) }

func ReadPhonebook(pos int) string { return fmt.Sprintf("AT+CPBR=%d", pos) }

func WritePhonebook(pos int, number string) string {
	return fmt.Sprintf(`AT+CPBW=%d,"%s"`, pos, number)
}

func DeletePhonebook(pos int) string { return fmt.Sprintf("AT+CPBW=%d", pos) }

func BearerAPN(apn string) string { return fmt.Sprintf(`AT+SAPBR=3,1,"APN","%s"`, apn) }

func HTTPURL(url string) string { return fmt.Sprintf(`AT+HTTPPARA="URL","%s"`, url) }

// HTTPAction starts a request; method 0 is GET, 1 is POST.
func HTTPAction(method int) string { return fmt.Sprintf("AT+HTTPACTION=%d", method) }

// HTTPActionOK is the completion report for a successful request.
func HTTPActionOK(method int) string { return fmt.Sprintf("+HTTPACTION:%d,200", method) }

func HTTPReadAll(length int) string { return fmt.Sprintf("AT+HTTPREAD=0,%d", length) }
