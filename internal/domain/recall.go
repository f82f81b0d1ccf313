package domain

import (
	"fmt"
	"time"
)

// recallDelays maps a repetition count to the pause before the next
// showing of a word. The table is deliberately short: after the last
// step the word is considered settled and its clock is never advanced
// again.
var recallDelays = [...]time.Duration{
	1 * 24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	30 * 24 * time.Hour,
	90 * 24 * time.Hour,
}

// RecallSteps is the number of repetitions tracked per show direction.
const RecallSteps = len(recallDelays)

// TranslationStagger is added to the translation clock on the first
// transition so the two directions are not always tested the same day.
const TranslationStagger = 24 * time.Hour

// RecallDelay returns the delay before repetition number i.
// i must be in [0, RecallSteps); anything else is a caller bug — the
// state machine guards guarantee it never happens, so this panics
// instead of returning an error.
func RecallDelay(i int) time.Duration {
	if i < 0 || i >= RecallSteps {
		panic(fmt.Sprintf("recall delay index out of range: %d", i))
	}
	return recallDelays[i]
}
