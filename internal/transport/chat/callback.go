package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// Callback payloads are tagged variants encoded as "tag:field:...".
// The flat colon format keeps payloads inside the transport's size
// limit for button data.

// Payload is one decoded callback payload.
type Payload interface {
	// Encode renders the payload into button data.
	Encode() string
}

// Route tags.
const (
	tagMainMenu         = "mm"
	tagDeleteMsg        = "del"
	tagNotify           = "ntf"
	tagSettings         = "cfg"
	tagSelectNative     = "snl"
	tagSelectForeign    = "sfl"
	tagRememberMenu     = "memw"
	tagRememberQuestion = "memwq"
	tagRememberAnswer   = "memwa"
	tagRecallQuestion   = "recwq"
	tagRecallAnswer     = "recwa"
	tagAbout            = "abt"
	tagStub             = "stub"
)

// Answer sub-views.
const (
	subFull     = "full"
	subExamples = "examples"
	subIdioms   = "idioms"
)

// MainMenu shows the main menu. New forces a fresh message instead of
// editing the previous one.
type MainMenu struct {
	New bool
}

func (p MainMenu) Encode() string { return join(tagMainMenu, encodeBool(p.New)) }

// DeleteMsg deletes the message the button is attached to.
type DeleteMsg struct{}

func (DeleteMsg) Encode() string { return tagDeleteMsg }

// Notify shows a short toast.
type Notify struct {
	TextID int
}

func (p Notify) Encode() string { return join(tagNotify, strconv.Itoa(p.TextID)) }

// Settings opens the settings screen.
type Settings struct{}

func (Settings) Encode() string { return tagSettings }

// SelectNative is a native-language pick during language selection.
type SelectNative struct {
	Native string
}

func (p SelectNative) Encode() string { return join(tagSelectNative, p.Native) }

// SelectForeign completes language selection.
type SelectForeign struct {
	Native  string
	Foreign string
}

func (p SelectForeign) Encode() string { return join(tagSelectForeign, p.Native, p.Foreign) }

// RememberMenu shows the remember-session options step.
type RememberMenu struct {
	Swap    bool
	Shuffle bool
}

func (p RememberMenu) Encode() string {
	return join(tagRememberMenu, encodeBool(p.Swap), encodeBool(p.Shuffle))
}

// RememberQuestion advances the remember session to step I. Mem marks
// the previous word remembered; Rm deletes it. At most one of the two
// may be set.
type RememberQuestion struct {
	I   int
	Mem bool
	Rm  bool
}

func (p RememberQuestion) Encode() string {
	return join(tagRememberQuestion, strconv.Itoa(p.I), encodeBool(p.Mem), encodeBool(p.Rm))
}

// RememberAnswer shows the answer view of step I: the full card or an
// examples/idioms page.
type RememberAnswer struct {
	I    int
	Sub  string
	Page int
}

func (p RememberAnswer) Encode() string {
	return join(tagRememberAnswer, strconv.Itoa(p.I), p.Sub, strconv.Itoa(p.Page))
}

// RecallQuestion advances the recall session to step I. Same Mem/Rm
// contract as RememberQuestion.
type RecallQuestion struct {
	I   int
	Mem bool
	Rm  bool
}

func (p RecallQuestion) Encode() string {
	return join(tagRecallQuestion, strconv.Itoa(p.I), encodeBool(p.Mem), encodeBool(p.Rm))
}

// RecallAnswer shows the answer view of recall step I.
type RecallAnswer struct {
	I    int
	Sub  string
	Page int
}

func (p RecallAnswer) Encode() string {
	return join(tagRecallAnswer, strconv.Itoa(p.I), p.Sub, strconv.Itoa(p.Page))
}

// About shows the bot description.
type About struct{}

func (About) Encode() string { return tagAbout }

// Stub acknowledges a not-yet-implemented button.
type Stub struct{}

func (Stub) Encode() string { return tagStub }

// Decode parses button data back into a payload. Malformed data and
// contradictory flags are rejected before any handler state changes.
func Decode(data string) (Payload, error) {
	parts := strings.Split(data, ":")
	tag, fields := parts[0], parts[1:]

	switch tag {
	case tagMainMenu:
		if len(fields) != 1 {
			return nil, badPayload(data)
		}
		newMsg, err := decodeBool(fields[0])
		if err != nil {
			return nil, badPayload(data)
		}
		return MainMenu{New: newMsg}, nil

	case tagDeleteMsg:
		return DeleteMsg{}, nil

	case tagNotify:
		if len(fields) != 1 {
			return nil, badPayload(data)
		}
		textID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, badPayload(data)
		}
		return Notify{TextID: textID}, nil

	case tagSettings:
		return Settings{}, nil

	case tagSelectNative:
		if len(fields) != 1 || fields[0] == "" {
			return nil, badPayload(data)
		}
		return SelectNative{Native: fields[0]}, nil

	case tagSelectForeign:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return nil, badPayload(data)
		}
		return SelectForeign{Native: fields[0], Foreign: fields[1]}, nil

	case tagRememberMenu:
		if len(fields) != 2 {
			return nil, badPayload(data)
		}
		swap, err1 := decodeBool(fields[0])
		shuffle, err2 := decodeBool(fields[1])
		if err1 != nil || err2 != nil {
			return nil, badPayload(data)
		}
		return RememberMenu{Swap: swap, Shuffle: shuffle}, nil

	case tagRememberQuestion:
		i, mem, rm, err := decodeQuestion(data, fields)
		if err != nil {
			return nil, err
		}
		return RememberQuestion{I: i, Mem: mem, Rm: rm}, nil

	case tagRememberAnswer:
		i, sub, page, err := decodeAnswer(data, fields)
		if err != nil {
			return nil, err
		}
		return RememberAnswer{I: i, Sub: sub, Page: page}, nil

	case tagRecallQuestion:
		i, mem, rm, err := decodeQuestion(data, fields)
		if err != nil {
			return nil, err
		}
		return RecallQuestion{I: i, Mem: mem, Rm: rm}, nil

	case tagRecallAnswer:
		i, sub, page, err := decodeAnswer(data, fields)
		if err != nil {
			return nil, err
		}
		return RecallAnswer{I: i, Sub: sub, Page: page}, nil

	case tagAbout:
		return About{}, nil

	case tagStub:
		return Stub{}, nil
	}
	return nil, badPayload(data)
}

func decodeQuestion(data string, fields []string) (i int, mem, rm bool, err error) {
	if len(fields) != 3 {
		return 0, false, false, badPayload(data)
	}
	i, err = strconv.Atoi(fields[0])
	if err != nil || i < 0 {
		return 0, false, false, badPayload(data)
	}
	mem, err1 := decodeBool(fields[1])
	rm, err2 := decodeBool(fields[2])
	if err1 != nil || err2 != nil {
		return 0, false, false, badPayload(data)
	}
	// Remembering and deleting the same word contradict each other.
	if mem && rm {
		return 0, false, false, domain.NewValidationError("payload", "mem and rm are mutually exclusive")
	}
	return i, mem, rm, nil
}

func decodeAnswer(data string, fields []string) (i int, sub string, page int, err error) {
	if len(fields) != 3 {
		return 0, "", 0, badPayload(data)
	}
	i, err = strconv.Atoi(fields[0])
	if err != nil || i < 0 {
		return 0, "", 0, badPayload(data)
	}
	sub = fields[1]
	if sub != subFull && sub != subExamples && sub != subIdioms {
		return 0, "", 0, badPayload(data)
	}
	page, err = strconv.Atoi(fields[2])
	if err != nil || page < 0 {
		return 0, "", 0, badPayload(data)
	}
	return i, sub, page, nil
}

func badPayload(data string) error {
	return domain.NewValidationError("payload", fmt.Sprintf("malformed callback data %q", data))
}

func join(parts ...string) string { return strings.Join(parts, ":") }

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("not a bool flag: %q", s)
}
