package chat

// Button is one inline keyboard button: a label and the callback
// payload it fires.
type Button struct {
	Text string
	Data string
}

// Keyboard is a rows-of-buttons inline keyboard.
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard creates a keyboard from prebuilt rows.
func NewKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Add appends a row.
func (k *Keyboard) Add(row ...Button) *Keyboard {
	k.Rows = append(k.Rows, row)
	return k
}

// Btn builds a button from a label and a payload.
func Btn(text string, p Payload) Button {
	return Button{Text: text, Data: p.Encode()}
}
