package chat

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

const (
	examplesPerPage = 4
	idiomsPerPage   = 4

	maxTranslationsShown = 10
)

const (
	emojiYes = "✅"
	emojiNo  = "❌"
)

// Notification toast ids for the Notify payload.
const (
	notifyNoWordsToRemember = 0
	notifyNoWordsToRecall   = 1
)

var notifications = map[int]string{
	notifyNoWordsToRemember: "Сначала добавьте слова для изучения.",
	notifyNoWordsToRecall:   "Пока нет слов для повторения.",
}

const aboutText = "Бот предназначен для изучения иностранных слов. " +
	"В данный момент - слов на английском языке.\n\n" +
	"Есть 2 способа добавления слов для изучения:\n" +
	"1. Отправить слово в чат с ботом.\n" +
	"2. Переслать слово из другого приложения, например, из браузера Chrome.\n\n" +
	"После того как Вы запомнили слово, через определенные промежутки времени " +
	"бот будет предлагать повторить это слово (через 1, 3, 7, 30 и 90 дней)."

// markupRun matches angle-bracketed runs in dictionary text.
var markupRun = regexp.MustCompile(`(<.+>)`)

// sanitizeMarkup neutralizes angle brackets the dictionary uses for
// grammatical notes so they do not break the transport's HTML parsing.
// The bracketed run is re-rendered underlined.
func sanitizeMarkup(text string) string {
	parts := markupRun.FindAllString(text, -1)
	for _, part := range parts {
		inner := strings.NewReplacer("<", "", ">", "").Replace(part[1 : len(part)-1])
		text = strings.Replace(text, part, "<u>"+inner+"</u>", 1)
	}
	return text
}

// wordCard renders the full word view: headword, transcriptions, noun
// plural, verb forms and the leading translations.
func wordCard(w *domain.Word) string {
	var b strings.Builder
	b.WriteString("📗 <b>" + sanitizeMarkup(w.Original) + "</b>")
	if len(w.Transcriptions) > 0 {
		b.WriteString("  [" + strings.Join(w.Transcriptions, ", ") + "]")
	}
	if len(w.NounPlural) > 0 {
		b.WriteString("  (" + strings.Join(w.NounPlural, ", ") + ")")
	}
	b.WriteString("\n\n")
	if len(w.PastIndefinite) > 0 && len(w.PastParticiple) > 0 {
		b.WriteString("<i>verb:</i>\n")
		b.WriteString("II : " + strings.Join(w.PastIndefinite, ", ") + "\n")
		b.WriteString("III: " + strings.Join(w.PastParticiple, ", ") + "\n\n")
	}
	b.WriteString("<b>Перевод:</b>\n")
	translations := w.Translations
	if len(translations) > maxTranslationsShown {
		translations = translations[:maxTranslationsShown]
	}
	for _, tr := range translations {
		b.WriteString("- " + sanitizeMarkup(tr) + "\n")
	}
	return b.String()
}

// questionText renders the question side of a session step: the
// headword, or the translations when the direction is swapped.
func questionText(w *domain.Word, swap bool) string {
	if !swap {
		return "📗 <b>" + sanitizeMarkup(w.Original) + "</b>\n\n❓❓❓"
	}
	var b strings.Builder
	b.WriteString("❓❓❓\n\n<b>Перевод:</b>\n")
	for _, tr := range w.Translations {
		b.WriteString("- " + sanitizeMarkup(tr) + "\n")
	}
	return b.String()
}

func pairsHeader(w *domain.Word, title string) string {
	header := "📗 <b>" + sanitizeMarkup(w.Original) + "</b>"
	if len(w.Transcriptions) > 0 {
		header += " [" + strings.Join(w.Transcriptions, ", ") + "]"
	}
	return header + "\n\n" + title + ":\n\n"
}

func pairsPage(pairs []domain.SentencePair, page, perPage int, underline bool) string {
	var b strings.Builder
	start := perPage * page
	stop := start + perPage
	if start > len(pairs) {
		start = len(pairs)
	}
	if stop > len(pairs) {
		stop = len(pairs)
	}
	for _, pair := range pairs[start:stop] {
		original := sanitizeMarkup(pair.Original)
		if underline {
			original = "<u>" + original + "</u>"
		}
		b.WriteString("📌 " + original + "\n")
		b.WriteString("🔗 " + sanitizeMarkup(pair.Translation) + "\n\n")
	}
	return b.String()
}

// examplesText renders one page of usage examples.
func examplesText(w *domain.Word, page int) string {
	return pairsHeader(w, "Примеры") + pairsPage(w.Examples, page, examplesPerPage, false)
}

// idiomsText renders one page of idioms.
func idiomsText(w *domain.Word, page int) string {
	return pairsHeader(w, "Идиомы") + pairsPage(w.Idioms, page, idiomsPerPage, true)
}

func hasMoreExamples(w *domain.Word, page int) bool {
	return len(w.Examples) > examplesPerPage*(page+1)
}

func hasMoreIdioms(w *domain.Word, page int) bool {
	return len(w.Idioms) > idiomsPerPage*(page+1)
}

// userErrorText maps expected AddWord failures to the reply the user
// sees. Unexpected errors yield "", letting the caller fail normally.
func userErrorText(err error) string {
	if errors.Is(err, domain.ErrTranslationNotFound) {
		return "Перевод слова не найден."
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) == 0 {
		return ""
	}
	switch ve.Errors[0].Message {
	case "too short":
		return "Слишком короткое слово."
	case "too long":
		return "Слишком длинное слово."
	case "contains forbidden characters":
		return "В слове присутствуют запрещенные символы."
	default:
		return "Неправильный запрос."
	}
}

// greeting renders the main menu header.
func greeting(firstName, foreignLanguage string) string {
	return fmt.Sprintf("Привет, %s!\nИзучаем %s.", firstName, foreignLanguage)
}
