package modem

// HoldLine takes the communication line as another operation would.
func (m *Modem) HoldLine(state LineState) (func(), error) {
	return m.hold(state)
}
