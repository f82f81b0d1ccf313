package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/dispatch"
	"github.com/ipakeev/words-fan-bot/internal/domain"
	"github.com/ipakeev/words-fan-bot/internal/service/vocab"
)

// senderMock records outgoing calls; unset funcs use a benign default.
type senderMock struct {
	mu    sync.Mutex
	calls []string

	SendMessageFunc        func(ctx context.Context, chatID int64, text string, kb *Keyboard) (int64, error)
	SendAudioFunc          func(ctx context.Context, chatID int64, audioID, caption string, kb *Keyboard) (int64, error)
	EditMessageTextFunc    func(ctx context.Context, chatID, messageID int64, text string, kb *Keyboard) error
	EditMessageCaptionFunc func(ctx context.Context, chatID, messageID int64, caption string, kb *Keyboard) error
	DeleteMessageFunc      func(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackFunc     func(ctx context.Context, callbackID, text string) error
	UploadAudioFunc        func(ctx context.Context, chatID int64, path string) (string, error)
}

func (m *senderMock) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *senderMock) callNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *senderMock) SendMessage(ctx context.Context, chatID int64, text string, kb *Keyboard) (int64, error) {
	m.record("SendMessage")
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text, kb)
	}
	return 1, nil
}

func (m *senderMock) SendAudio(ctx context.Context, chatID int64, audioID, caption string, kb *Keyboard) (int64, error) {
	m.record("SendAudio")
	if m.SendAudioFunc != nil {
		return m.SendAudioFunc(ctx, chatID, audioID, caption, kb)
	}
	return 1, nil
}

func (m *senderMock) EditMessageText(ctx context.Context, chatID, messageID int64, text string, kb *Keyboard) error {
	m.record("EditMessageText")
	if m.EditMessageTextFunc != nil {
		return m.EditMessageTextFunc(ctx, chatID, messageID, text, kb)
	}
	return nil
}

func (m *senderMock) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, kb *Keyboard) error {
	m.record("EditMessageCaption")
	if m.EditMessageCaptionFunc != nil {
		return m.EditMessageCaptionFunc(ctx, chatID, messageID, caption, kb)
	}
	return nil
}

func (m *senderMock) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	m.record("DeleteMessage")
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, chatID, messageID)
	}
	return nil
}

func (m *senderMock) AnswerCallback(ctx context.Context, callbackID, text string) error {
	m.record("AnswerCallback")
	if m.AnswerCallbackFunc != nil {
		return m.AnswerCallbackFunc(ctx, callbackID, text)
	}
	return nil
}

func (m *senderMock) UploadAudio(ctx context.Context, chatID int64, path string) (string, error) {
	m.record("UploadAudio")
	if m.UploadAudioFunc != nil {
		return m.UploadAudioFunc(ctx, chatID, path)
	}
	return "audio-1", nil
}

// stateMock is an in-memory stand-in for the redis session store.
type stateMock struct {
	mu       sync.Mutex
	previous map[int64]*domain.PreviousMessage
	options  map[int64]domain.SessionOptions
	remember map[int64][]int64
	recall   map[int64][]domain.RecallItem
}

func newStateMock() *stateMock {
	return &stateMock{
		previous: make(map[int64]*domain.PreviousMessage),
		options:  make(map[int64]domain.SessionOptions),
		remember: make(map[int64][]int64),
		recall:   make(map[int64][]domain.RecallItem),
	}
}

func (m *stateMock) SetPreviousMessage(_ context.Context, msg domain.PreviousMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previous[msg.UserID] = &msg
	return nil
}

func (m *stateMock) PreviousMessage(_ context.Context, userID int64) (*domain.PreviousMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous[userID], nil
}

func (m *stateMock) DeletePreviousMessage(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.previous, userID)
	return nil
}

func (m *stateMock) SetSessionOptions(_ context.Context, userID int64, opts domain.SessionOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[userID] = opts
	return nil
}

func (m *stateMock) SessionOptions(_ context.Context, userID int64) (domain.SessionOptions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options[userID], nil
}

func (m *stateMock) SetRememberOrder(_ context.Context, userID int64, wordIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remember[userID] = append([]int64(nil), wordIDs...)
	return nil
}

func (m *stateMock) RememberOrder(_ context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.remember[userID]...), nil
}

func (m *stateMock) SetRecallOrder(_ context.Context, userID int64, items []domain.RecallItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recall[userID] = append([]domain.RecallItem(nil), items...)
	return nil
}

func (m *stateMock) RecallOrder(_ context.Context, userID int64) ([]domain.RecallItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RecallItem(nil), m.recall[userID]...), nil
}

type vocabMock struct {
	EnsureUserFunc             func(ctx context.Context, u domain.User, defaultCode string) ([]domain.UserLang, error)
	AddUserLangFunc            func(ctx context.Context, userID int64, nativeCode, foreignCode string) (*domain.UserLang, error)
	AddWordFunc                func(ctx context.Context, userID int64, translationCode, text string) (*vocab.AddResult, error)
	GetWordByIDFunc            func(ctx context.Context, id int64) (*domain.Word, error)
	MarkRememberedFunc         func(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	RecordShownOriginalFunc    func(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	RecordShownTranslationFunc func(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	DeleteWordFunc             func(ctx context.Context, userID, wordID int64) error
	CountLearningFunc          func(ctx context.Context, userID int64, translationCode string) (int, error)
	CountRecallableFunc        func(ctx context.Context, userID int64, translationCode string) (int, error)
	IDsLearningFunc            func(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueOriginalFunc         func(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueTranslationFunc      func(ctx context.Context, userID int64, translationCode string) ([]int64, error)
}

func (m *vocabMock) EnsureUser(ctx context.Context, u domain.User, defaultCode string) ([]domain.UserLang, error) {
	if m.EnsureUserFunc != nil {
		return m.EnsureUserFunc(ctx, u, defaultCode)
	}
	return []domain.UserLang{{UserID: u.ID, TranslationCode: defaultCode}}, nil
}

func (m *vocabMock) AddUserLang(ctx context.Context, userID int64, nativeCode, foreignCode string) (*domain.UserLang, error) {
	return m.AddUserLangFunc(ctx, userID, nativeCode, foreignCode)
}

func (m *vocabMock) AddWord(ctx context.Context, userID int64, translationCode, text string) (*vocab.AddResult, error) {
	return m.AddWordFunc(ctx, userID, translationCode, text)
}

func (m *vocabMock) GetWordByID(ctx context.Context, id int64) (*domain.Word, error) {
	return m.GetWordByIDFunc(ctx, id)
}

func (m *vocabMock) MarkRemembered(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	return m.MarkRememberedFunc(ctx, userID, wordID)
}

func (m *vocabMock) RecordShownOriginal(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	return m.RecordShownOriginalFunc(ctx, userID, wordID)
}

func (m *vocabMock) RecordShownTranslation(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	return m.RecordShownTranslationFunc(ctx, userID, wordID)
}

func (m *vocabMock) DeleteWord(ctx context.Context, userID, wordID int64) error {
	return m.DeleteWordFunc(ctx, userID, wordID)
}

func (m *vocabMock) CountLearning(ctx context.Context, userID int64, translationCode string) (int, error) {
	if m.CountLearningFunc != nil {
		return m.CountLearningFunc(ctx, userID, translationCode)
	}
	return 0, nil
}

func (m *vocabMock) CountRecallable(ctx context.Context, userID int64, translationCode string) (int, error) {
	if m.CountRecallableFunc != nil {
		return m.CountRecallableFunc(ctx, userID, translationCode)
	}
	return 0, nil
}

func (m *vocabMock) IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return m.IDsLearningFunc(ctx, userID, translationCode)
}

func (m *vocabMock) IDsDueOriginal(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return m.IDsDueOriginalFunc(ctx, userID, translationCode)
}

func (m *vocabMock) IDsDueTranslation(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return m.IDsDueTranslationFunc(ctx, userID, translationCode)
}

// tasksMock records scheduled ops without running them.
type tasksMock struct {
	mu        sync.Mutex
	scheduled []dispatch.Op
}

func (m *tasksMock) Schedule(op dispatch.Op, _ time.Duration) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, op)
	return fmt.Sprintf("task-%d", len(m.scheduled))
}

// inlineDispatcher runs each op synchronously on the caller.
type inlineDispatcher struct {
	errs []error
}

func (d *inlineDispatcher) Submit(_ int64, op dispatch.Op) {
	if err := op(context.Background()); err != nil {
		d.errs = append(d.errs, err)
	}
}
