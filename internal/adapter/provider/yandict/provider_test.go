package yandict

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(baseURL string) *Provider {
	return NewProvider(config.DictionaryConfig{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		RetryBackoff: 10 * time.Millisecond,
	}, newTestLogger())
}

const lookupBody = `{
	"en-ru": {
		"regular": [
			{
				"text": "go",
				"ts": "ɡəʊ",
				"pos": {"tooltip": "verb"},
				"prdg": {"data": [{"tables": [{"rows": [
					["went", "(had) went"],
					["was going", "were going"],
					["gone", "(had) gone"]
				]}]}]},
				"tr": [
					{"text": "идти"},
					{"text": "ехать"},
					{"text": "идти"},
					{"text": "ходить"},
					{"text": "пойти"},
					{"text": "уходить"},
					{"text": "шестой вариант"}
				]
			},
			{
				"text": "go",
				"ts": "ɡoʊ",
				"pos": {"tooltip": "noun"},
				"prdg": {"data": [{"tables": [{"rows": [["go", "goes"]]}]}]},
				"tr": [{"text": "ход"}]
			}
		]
	}
}`

const corpusBody = `{
	"result": {
		"examples": [
			{"src": "Let it go.", "dst": "Отпусти.", "ref": {"type": "example"}},
			{"src": "on the go", "dst": "на ходу", "ref": {"type": "idiom"}},
			{"src": "Go home.", "dst": "Иди домой.", "ref": {"type": "example"}}
		]
	}
}`

func TestProvider_Lookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/lookupMultiple":
			w.Write([]byte(lookupBody))
		case "/queryCorpus":
			w.Write([]byte(corpusBody))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	word, err := p.Lookup(context.Background(), "en-ru", "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if word.Original != "go" {
		t.Errorf("Original = %q, want corrected %q", word.Original, "go")
	}
	if word.TranslationCode != "en-ru" {
		t.Errorf("TranslationCode = %q, want %q", word.TranslationCode, "en-ru")
	}

	// 5 per article, deduplicated, second article appended.
	want := []string{"идти", "ехать", "ходить", "пойти", "ход"}
	if len(word.Translations) != len(want) {
		t.Fatalf("Translations = %v, want %v", word.Translations, want)
	}
	for i, tr := range want {
		if word.Translations[i] != tr {
			t.Errorf("Translations[%d] = %q, want %q", i, word.Translations[i], tr)
		}
	}

	if len(word.Transcriptions) != 2 {
		t.Errorf("Transcriptions = %v, want two variants", word.Transcriptions)
	}

	// Row 0 is past indefinite, row 2 past participle, "(had) " stripped.
	if len(word.PastIndefinite) != 2 || word.PastIndefinite[1] != "went" {
		t.Errorf("PastIndefinite = %v", word.PastIndefinite)
	}
	if len(word.PastParticiple) != 2 || word.PastParticiple[1] != "gone" {
		t.Errorf("PastParticiple = %v", word.PastParticiple)
	}
	if len(word.NounPlural) != 1 || word.NounPlural[0] != "goes" {
		t.Errorf("NounPlural = %v, want [goes]", word.NounPlural)
	}

	if len(word.Examples) != 2 || word.Examples[0].Original != "Let it go." {
		t.Errorf("Examples = %v", word.Examples)
	}
	if len(word.Idioms) != 1 || word.Idioms[0].Translation != "на ходу" {
		t.Errorf("Idioms = %v", word.Idioms)
	}
}

func TestProvider_Lookup_ExclusiveFallback(t *testing.T) {
	t.Parallel()

	var lookupCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/lookupMultiple":
			if lookupCalls.Add(1) == 1 {
				// Regular dictionary knows nothing.
				w.Write([]byte(`{"en-ru": {"regular": []}}`))
				return
			}
			if r.URL.Query().Get("dict") != "en-ru.regular" {
				t.Errorf("fallback dict = %q, want %q", r.URL.Query().Get("dict"), "en-ru.regular")
			}
			w.Write([]byte(`{"en-ru": {"def": [{"tr": [{"def": "редкое слово"}]}]}}`))
		case "/queryCorpus":
			w.Write([]byte(`{"result": {"examples": []}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	word, err := p.Lookup(context.Background(), "en-ru", "sesquipedalian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(word.Translations) != 1 || word.Translations[0] != "редкое слово" {
		t.Errorf("Translations = %v, want definitional fallback", word.Translations)
	}
	// The headword was not corrected, the input stays.
	if word.Original != "sesquipedalian" {
		t.Errorf("Original = %q, want input kept", word.Original)
	}
}

func TestProvider_Lookup_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/lookupMultiple":
			w.Write([]byte(`{"en-ru": {"regular": [], "def": []}}`))
		case "/queryCorpus":
			w.Write([]byte(`{"result": {"examples": []}}`))
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	word, err := p.Lookup(context.Background(), "en-ru", "qwertyuiop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(word.Translations) != 0 {
		t.Errorf("Translations = %v, want empty for unknown word", word.Translations)
	}
}

func TestProvider_Lookup_RetriesOn5xx(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/lookupMultiple":
			if attempts.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(lookupBody))
		case "/queryCorpus":
			w.Write([]byte(corpusBody))
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	word, err := p.Lookup(context.Background(), "en-ru", "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want retry after 500", attempts.Load())
	}
	if len(word.Translations) == 0 {
		t.Error("expected translations from the retried request")
	}
}

func TestProvider_Lookup_FailsAfterRetry(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if _, err := p.Lookup(context.Background(), "en-ru", "go"); err == nil {
		t.Fatal("expected error after exhausted retry")
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want exactly one retry", attempts.Load())
	}
}
