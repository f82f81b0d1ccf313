package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/dispatch"
	"github.com/ipakeev/words-fan-bot/internal/domain"
	"github.com/ipakeev/words-fan-bot/internal/service/vocab"
)

type vocabService interface {
	EnsureUser(ctx context.Context, u domain.User, defaultCode string) ([]domain.UserLang, error)
	AddUserLang(ctx context.Context, userID int64, nativeCode, foreignCode string) (*domain.UserLang, error)
	AddWord(ctx context.Context, userID int64, translationCode, text string) (*vocab.AddResult, error)
	GetWordByID(ctx context.Context, id int64) (*domain.Word, error)
	MarkRemembered(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	RecordShownOriginal(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	RecordShownTranslation(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	DeleteWord(ctx context.Context, userID, wordID int64) error
	CountLearning(ctx context.Context, userID int64, translationCode string) (int, error)
	CountRecallable(ctx context.Context, userID int64, translationCode string) (int, error)
	IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueOriginal(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueTranslation(ctx context.Context, userID int64, translationCode string) ([]int64, error)
}

// sessionStore holds the per-user session state that survives restarts.
type sessionStore interface {
	SetSessionOptions(ctx context.Context, userID int64, opts domain.SessionOptions) error
	SessionOptions(ctx context.Context, userID int64) (domain.SessionOptions, error)
	SetRememberOrder(ctx context.Context, userID int64, wordIDs []int64) error
	RememberOrder(ctx context.Context, userID int64) ([]int64, error)
	SetRecallOrder(ctx context.Context, userID int64, items []domain.RecallItem) error
	RecallOrder(ctx context.Context, userID int64) ([]domain.RecallItem, error)
}

type eventDispatcher interface {
	Submit(userID int64, op dispatch.Op)
}

type scheduler interface {
	Schedule(op dispatch.Op, delay time.Duration) string
}

// errorReplyTTL is how long a rejected-word reply stays in the chat
// before the bot cleans it up itself.
const errorReplyTTL = 30 * time.Second

// Bot routes incoming events to handlers. Every event runs on its
// user's dispatch queue, so handlers never race for one user's session
// state.
type Bot struct {
	sender      Sender
	messenger   *Messenger
	vocab       vocabService
	states      sessionStore
	dispatcher  eventDispatcher
	tasks       scheduler
	langs       config.Langs
	defaultPair string
	log         *slog.Logger

	// shuffle is swapped for a deterministic version in tests.
	shuffle func(n int, swap func(i, j int))
}

// NewBot creates a Bot over the given collaborators.
func NewBot(
	sender Sender,
	messenger *Messenger,
	vocabSvc vocabService,
	states sessionStore,
	dispatcher eventDispatcher,
	tasks scheduler,
	langs config.Langs,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		sender:      sender,
		messenger:   messenger,
		vocab:       vocabSvc,
		states:      states,
		dispatcher:  dispatcher,
		tasks:       tasks,
		langs:       langs,
		defaultPair: langs.TranslationCode("ru", "en"),
		log:         logger.With("component", "bot"),
		shuffle:     rand.Shuffle,
	}
}

// Handle enqueues the event on its user's queue and returns
// immediately.
func (b *Bot) Handle(ev Event) {
	b.dispatcher.Submit(ev.User.ID, func(ctx context.Context) error {
		return b.route(ctx, ev)
	})
}

func (b *Bot) route(ctx context.Context, ev Event) error {
	if !ev.IsCallback() {
		if strings.TrimSpace(ev.Text) == "/start" {
			return b.handleStart(ctx, ev)
		}
		return b.handleAddWord(ctx, ev)
	}

	p, err := Decode(ev.Payload)
	if err != nil {
		if ackErr := b.ack(ctx, ev, "Неправильный запрос."); ackErr != nil {
			return ackErr
		}
		return fmt.Errorf("decode callback: %w", err)
	}

	switch p := p.(type) {
	case MainMenu:
		return b.handleMainMenu(ctx, ev, p)
	case DeleteMsg:
		return b.handleDeleteMsg(ctx, ev)
	case Notify:
		return b.ack(ctx, ev, notifications[p.TextID])
	case Settings:
		return b.handleSettings(ctx, ev)
	case SelectNative:
		return b.handleSelectNative(ctx, ev, p)
	case SelectForeign:
		return b.handleSelectForeign(ctx, ev, p)
	case RememberMenu:
		return b.handleRememberMenu(ctx, ev, p)
	case RememberQuestion:
		return b.handleRememberQuestion(ctx, ev, p)
	case RememberAnswer:
		return b.handleRememberAnswer(ctx, ev, p)
	case RecallQuestion:
		return b.handleRecallQuestion(ctx, ev, p)
	case RecallAnswer:
		return b.handleRecallAnswer(ctx, ev, p)
	case About:
		return b.handleAbout(ctx, ev)
	case Stub:
		return b.ack(ctx, ev, "Пока не реализовано.")
	}
	return fmt.Errorf("unhandled payload %T", p)
}

// ack answers the callback query. Each callback is answered exactly
// once; a stale query aborts the handler before it renders anything.
func (b *Bot) ack(ctx context.Context, ev Event, text string) error {
	if err := b.sender.AnswerCallback(ctx, ev.CallbackID, text); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// activePair makes sure the user exists and returns their current
// translation pair.
func (b *Bot) activePair(ctx context.Context, user domain.User) (string, error) {
	langs, err := b.vocab.EnsureUser(ctx, user, b.defaultPair)
	if err != nil {
		return "", err
	}
	if len(langs) == 0 {
		return b.defaultPair, nil
	}
	return langs[0].TranslationCode, nil
}

func (b *Bot) handleStart(ctx context.Context, ev Event) error {
	if err := b.sender.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
		b.log.WarnContext(ctx, "delete /start message", slog.String("error", err.Error()))
	}
	return b.showMainMenu(ctx, ev.User, true)
}

func (b *Bot) handleAddWord(ctx context.Context, ev Event) error {
	pair, err := b.activePair(ctx, ev.User)
	if err != nil {
		return err
	}

	result, err := b.vocab.AddWord(ctx, ev.User.ID, pair, ev.Text)
	if err != nil {
		text := userErrorText(err)
		if text == "" {
			return fmt.Errorf("add word %q: %w", ev.Text, err)
		}
		kb := NewKeyboard().Add(Btn("Удалить", DeleteMsg{}))
		messageID, sendErr := b.sender.SendMessage(ctx, ev.ChatID, text, kb)
		if sendErr != nil {
			return sendErr
		}
		b.scheduleCleanup(ev.ChatID, messageID)
		return nil
	}

	title := "Добавлено слово:"
	if result.AlreadyAdded {
		title = "Добавлено ранее:"
	}
	kb := NewKeyboard().Add(Btn("Удалить", DeleteMsg{}))
	if _, err := b.sender.SendMessage(ctx, ev.ChatID, title+"\n\n"+wordCard(result.Word), kb); err != nil {
		return err
	}
	return nil
}

func (b *Bot) handleMainMenu(ctx context.Context, ev Event, p MainMenu) error {
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	return b.showMainMenu(ctx, ev.User, p.New)
}

func (b *Bot) showMainMenu(ctx context.Context, user domain.User, fresh bool) error {
	pair, err := b.activePair(ctx, user)
	if err != nil {
		return err
	}
	nRemember, err := b.vocab.CountLearning(ctx, user.ID, pair)
	if err != nil {
		return err
	}
	nRecall, err := b.vocab.CountRecallable(ctx, user.ID, pair)
	if err != nil {
		return err
	}

	kb := NewKeyboard()
	if nRemember == 0 {
		kb.Add(Btn("Изучить (0)", Notify{TextID: notifyNoWordsToRemember}))
	} else {
		kb.Add(Btn(fmt.Sprintf("Изучить (%d)", nRemember), RememberMenu{Shuffle: true}))
	}
	if nRecall == 0 {
		kb.Add(Btn("Повторить (0)", Notify{TextID: notifyNoWordsToRecall}))
	} else {
		kb.Add(Btn(fmt.Sprintf("Повторить (%d)", nRecall), RecallQuestion{}))
	}
	kb.Add(Btn("⚙ Настройки", Settings{}))
	kb.Add(Btn("О боте", About{}), Btn("Обновить", MainMenu{New: true}))

	text := greeting(user.FirstName, b.langs.ForeignName(pair))
	if fresh {
		return b.messenger.Send(ctx, user.ID, text, "", kb)
	}
	return b.messenger.Edit(ctx, user.ID, text, "", kb)
}

func (b *Bot) handleDeleteMsg(ctx context.Context, ev Event) error {
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	return b.sender.DeleteMessage(ctx, ev.ChatID, ev.MessageID)
}

func (b *Bot) handleSettings(ctx context.Context, ev Event) error {
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	kb := NewKeyboard()
	for _, code := range b.langs.Codes() {
		kb.Add(Btn(b.langs.LanguageName(code), SelectNative{Native: code}))
	}
	kb.Add(Btn("🔔 Напоминания", Stub{}))
	kb.Add(Btn("Назад", MainMenu{}))
	return b.messenger.Edit(ctx, ev.User.ID, "Выберите родной язык:", "", kb)
}

func (b *Bot) handleSelectNative(ctx context.Context, ev Event, p SelectNative) error {
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	kb := NewKeyboard()
	for _, code := range b.langs.Codes() {
		if code == p.Native {
			continue
		}
		kb.Add(Btn(b.langs.LanguageName(code), SelectForeign{Native: p.Native, Foreign: code}))
	}
	kb.Add(Btn("Назад", Settings{}))
	return b.messenger.Edit(ctx, ev.User.ID, "Какой язык изучаем?", "", kb)
}

func (b *Bot) handleSelectForeign(ctx context.Context, ev Event, p SelectForeign) error {
	if _, err := b.vocab.AddUserLang(ctx, ev.User.ID, p.Native, p.Foreign); err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	return b.showMainMenu(ctx, ev.User, false)
}

func (b *Bot) handleRememberMenu(ctx context.Context, ev Event, p RememberMenu) error {
	opts := domain.SessionOptions{Swap: p.Swap, Shuffle: p.Shuffle}
	if err := b.states.SetSessionOptions(ctx, ev.User.ID, opts); err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}

	pair, err := b.activePair(ctx, ev.User)
	if err != nil {
		return err
	}
	shuffleMark := emojiNo
	if p.Shuffle {
		shuffleMark = emojiYes
	}
	kb := NewKeyboard().
		Add(Btn(b.langs.TranslationText(pair, p.Swap), RememberMenu{Swap: !p.Swap, Shuffle: p.Shuffle})).
		Add(Btn(shuffleMark+"  Перемешать", RememberMenu{Swap: p.Swap, Shuffle: !p.Shuffle})).
		Add(Btn("Назад", MainMenu{}), Btn("Далее", RememberQuestion{}))
	return b.messenger.Edit(ctx, ev.User.ID, "Выберите параметры:", "", kb)
}

func (b *Bot) handleRememberQuestion(ctx context.Context, ev Event, p RememberQuestion) error {
	userID := ev.User.ID
	opts, err := b.states.SessionOptions(ctx, userID)
	if err != nil {
		return err
	}
	pair, err := b.activePair(ctx, ev.User)
	if err != nil {
		return err
	}

	var ids []int64
	if p.I == 0 {
		ids, err = b.vocab.IDsLearning(ctx, userID, pair)
		if err != nil {
			return err
		}
		if opts.Shuffle {
			b.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		}
		if err := b.states.SetRememberOrder(ctx, userID, ids); err != nil {
			return err
		}
	} else {
		ids, err = b.states.RememberOrder(ctx, userID)
		if err != nil {
			return err
		}
	}

	ackText := ""
	if p.Mem || p.Rm {
		if p.I < 1 || p.I-1 >= len(ids) {
			return fmt.Errorf("remember step %d of %d: %w", p.I, len(ids), ErrStaleCallback)
		}
		prevID := ids[p.I-1]
		if p.Mem {
			ackText = "Запомнили."
			if err := b.markRemembered(ctx, userID, prevID); err != nil {
				return err
			}
		} else {
			ackText = "Удалено."
			if err := b.vocab.DeleteWord(ctx, userID, prevID); err != nil {
				return err
			}
		}
	}

	if p.I >= len(ids) {
		if ackText == "" {
			ackText = "Закончились слова."
		}
		if err := b.ack(ctx, ev, ackText); err != nil {
			return err
		}
		return b.showMainMenu(ctx, ev.User, false)
	}

	word, err := b.vocab.GetWordByID(ctx, ids[p.I])
	if err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ackText); err != nil {
		return err
	}
	kb := NewKeyboard().Add(
		Btn("Назад", MainMenu{}),
		Btn("Ответ", RememberAnswer{I: p.I, Sub: subFull}),
	)
	return b.messenger.Edit(ctx, ev.User.ID, questionText(word, opts.Swap), word.AudioID, kb)
}

func (b *Bot) handleRememberAnswer(ctx context.Context, ev Event, p RememberAnswer) error {
	ids, err := b.states.RememberOrder(ctx, ev.User.ID)
	if err != nil {
		return err
	}
	if p.I >= len(ids) {
		return fmt.Errorf("remember answer %d of %d: %w", p.I, len(ids), ErrStaleCallback)
	}
	word, err := b.vocab.GetWordByID(ctx, ids[p.I])
	if err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}

	text, kb := b.answerView(word, p.Sub, p.Page,
		func(sub string, page int) Payload { return RememberAnswer{I: p.I, Sub: sub, Page: page} },
		func(mem, rm bool) Payload { return RememberQuestion{I: p.I + 1, Mem: mem, Rm: rm} },
	)
	return b.messenger.Edit(ctx, ev.User.ID, text, word.AudioID, kb)
}

func (b *Bot) handleRecallQuestion(ctx context.Context, ev Event, p RecallQuestion) error {
	userID := ev.User.ID
	pair, err := b.activePair(ctx, ev.User)
	if err != nil {
		return err
	}

	var items []domain.RecallItem
	if p.I == 0 {
		items, err = b.freezeRecallOrder(ctx, userID, pair)
		if err != nil {
			return err
		}
	} else {
		items, err = b.states.RecallOrder(ctx, userID)
		if err != nil {
			return err
		}
	}

	i := p.I
	ackText := ""
	if p.Mem || p.Rm {
		if i < 1 || i-1 >= len(items) {
			return fmt.Errorf("recall step %d of %d: %w", i, len(items), ErrStaleCallback)
		}
		prev := items[i-1]
		if p.Mem {
			ackText = "Запомнили."
			if err := b.recordShown(ctx, userID, prev); err != nil {
				return err
			}
		} else {
			ackText = "Удалено."
			if err := b.vocab.DeleteWord(ctx, userID, prev.WordID); err != nil {
				return err
			}
			// A deleted word leaves the session in both directions, so
			// the frozen order shrinks and the cursor shifts with it.
			kept := items[:0]
			removed := 0
			for _, item := range items {
				if item.WordID == prev.WordID {
					removed++
					continue
				}
				kept = append(kept, item)
			}
			items = kept
			i -= removed
			if i < 0 {
				i = 0
			}
			if err := b.states.SetRecallOrder(ctx, userID, items); err != nil {
				return err
			}
		}
	}

	if i >= len(items) {
		if ackText == "" {
			ackText = "Закончились слова."
		}
		if err := b.ack(ctx, ev, ackText); err != nil {
			return err
		}
		return b.showMainMenu(ctx, ev.User, false)
	}

	item := items[i]
	word, err := b.vocab.GetWordByID(ctx, item.WordID)
	if err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ackText); err != nil {
		return err
	}
	kb := NewKeyboard().
		Add(Btn("Пропустить", RecallQuestion{I: i + 1})).
		Add(Btn("Назад", MainMenu{}), Btn("Ответ", RecallAnswer{I: i, Sub: subFull}))
	return b.messenger.Edit(ctx, ev.User.ID, questionText(word, item.Swap), word.AudioID, kb)
}

func (b *Bot) handleRecallAnswer(ctx context.Context, ev Event, p RecallAnswer) error {
	items, err := b.states.RecallOrder(ctx, ev.User.ID)
	if err != nil {
		return err
	}
	if p.I >= len(items) {
		return fmt.Errorf("recall answer %d of %d: %w", p.I, len(items), ErrStaleCallback)
	}
	word, err := b.vocab.GetWordByID(ctx, items[p.I].WordID)
	if err != nil {
		return err
	}
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}

	text, kb := b.answerView(word, p.Sub, p.Page,
		func(sub string, page int) Payload { return RecallAnswer{I: p.I, Sub: sub, Page: page} },
		func(mem, rm bool) Payload { return RecallQuestion{I: p.I + 1, Mem: mem, Rm: rm} },
	)
	return b.messenger.Edit(ctx, ev.User.ID, text, word.AudioID, kb)
}

func (b *Bot) handleAbout(ctx context.Context, ev Event) error {
	if err := b.ack(ctx, ev, ""); err != nil {
		return err
	}
	kb := NewKeyboard().Add(Btn("В главное меню", MainMenu{}))
	return b.messenger.Edit(ctx, ev.User.ID, aboutText, "", kb)
}

// scheduleCleanup removes a transient reply after its TTL; the user
// may have deleted it by hand already, so a failure only logs.
func (b *Bot) scheduleCleanup(chatID, messageID int64) {
	b.tasks.Schedule(func(ctx context.Context) error {
		err := b.sender.DeleteMessage(ctx, chatID, messageID)
		if err != nil {
			b.log.WarnContext(ctx, "cleanup reply",
				slog.Int64("chat_id", chatID), slog.Int64("message_id", messageID),
				slog.String("error", err.Error()))
		}
		return nil
	}, errorReplyTTL)
}

// freezeRecallOrder snapshots the due words of both directions into a
// shuffled session order.
func (b *Bot) freezeRecallOrder(ctx context.Context, userID int64, pair string) ([]domain.RecallItem, error) {
	originals, err := b.vocab.IDsDueOriginal(ctx, userID, pair)
	if err != nil {
		return nil, err
	}
	translations, err := b.vocab.IDsDueTranslation(ctx, userID, pair)
	if err != nil {
		return nil, err
	}
	items := make([]domain.RecallItem, 0, len(originals)+len(translations))
	for _, id := range originals {
		items = append(items, domain.RecallItem{WordID: id})
	}
	for _, id := range translations {
		items = append(items, domain.RecallItem{WordID: id, Swap: true})
	}
	b.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	if err := b.states.SetRecallOrder(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// markRemembered tolerates a repeated press on an already remembered
// word.
func (b *Bot) markRemembered(ctx context.Context, userID, wordID int64) error {
	_, err := b.vocab.MarkRemembered(ctx, userID, wordID)
	if errors.Is(err, domain.ErrNotFound) {
		b.log.WarnContext(ctx, "word already remembered or gone",
			slog.Int64("user_id", userID), slog.Int64("word_id", wordID))
		return nil
	}
	return err
}

// recordShown advances the shown word's recall clock in the direction
// it was asked. A word whose schedule is exhausted or that was deleted
// meanwhile is skipped, not failed.
func (b *Bot) recordShown(ctx context.Context, userID int64, item domain.RecallItem) error {
	var err error
	if item.Swap {
		_, err = b.vocab.RecordShownTranslation(ctx, userID, item.WordID)
	} else {
		_, err = b.vocab.RecordShownOriginal(ctx, userID, item.WordID)
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		b.log.WarnContext(ctx, "skip recall bookkeeping",
			slog.Int64("user_id", userID), slog.Int64("word_id", item.WordID),
			slog.String("reason", err.Error()))
		return nil
	}
	return err
}

// answerView renders the answer side of a session step: the full card
// or an examples/idioms page, with the shared session controls below.
func (b *Bot) answerView(
	word *domain.Word,
	sub string,
	page int,
	view func(sub string, page int) Payload,
	next func(mem, rm bool) Payload,
) (string, *Keyboard) {
	var text string
	kb := NewKeyboard()

	switch sub {
	case subExamples:
		text = examplesText(word, page)
		row := []Button{Btn("Основное", view(subFull, 0))}
		if len(word.Idioms) > 0 {
			row = append(row, Btn("Идиомы", view(subIdioms, 0)))
		}
		if hasMoreExamples(word, page) {
			row = append(row, Btn("Еще", view(subExamples, page+1)))
		}
		kb.Add(row...)
	case subIdioms:
		text = idiomsText(word, page)
		row := []Button{Btn("Основное", view(subFull, 0))}
		if len(word.Examples) > 0 {
			row = append(row, Btn("Примеры", view(subExamples, 0)))
		}
		if hasMoreIdioms(word, page) {
			row = append(row, Btn("Еще", view(subIdioms, page+1)))
		}
		kb.Add(row...)
	default:
		text = wordCard(word)
		var row []Button
		if len(word.Examples) > 0 {
			row = append(row, Btn("Примеры", view(subExamples, 0)))
		}
		if len(word.Idioms) > 0 {
			row = append(row, Btn("Идиомы", view(subIdioms, 0)))
		}
		if len(row) > 0 {
			kb.Add(row...)
		}
	}

	kb.Add(Btn("Удалить", next(false, true)), Btn("Запомнил", next(true, false)))
	kb.Add(Btn("Назад", MainMenu{}), Btn("Далее", next(false, false)))
	return text, kb
}
