// Package yandict fetches word profiles from the Yandex dictionary
// service: translations, transcriptions, verb and noun forms, and
// corpus examples.
package yandict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

const (
	maxTranslationsPerArticle = 5
	maxExamples               = 30
	maxIdioms                 = 30
)

// Provider is an HTTP client for the dictionary service.
type Provider struct {
	baseURL      string
	retryBackoff time.Duration
	httpClient   *http.Client
	log          *slog.Logger
}

// NewProvider creates a Provider from config.
func NewProvider(cfg config.DictionaryConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		retryBackoff: cfg.RetryBackoff,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          logger.With("adapter", "yandict"),
	}
}

// Lookup fetches the profile of a word for the given translation pair.
// The returned word carries no ID, audio or timestamps; a word that the
// dictionary does not know comes back with empty Translations rather
// than an error.
func (p *Provider) Lookup(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	ns, err := p.lookup(ctx, translationCode, original)
	if err != nil {
		return nil, err
	}

	word := &domain.Word{
		TranslationCode: translationCode,
		Original:        original,
	}
	if corrected := correctedOriginal(ns); corrected != "" {
		word.Original = corrected
	}
	word.Transcriptions = transcriptions(ns)
	word.Translations = regularTranslations(ns)
	verbIndefinite, verbParticiple := verbForms(ns)
	word.PastIndefinite = verbIndefinite
	word.PastParticiple = verbParticiple
	word.NounPlural = nounPlural(ns)

	// The regular dictionary misses rare words that the definitional
	// one still carries.
	if len(word.Translations) == 0 {
		exclusive, err := p.lookupExclusive(ctx, translationCode, original)
		if err != nil {
			return nil, err
		}
		word.Translations = exclusiveTranslations(exclusive)
	}

	examples, idioms, err := p.corpus(ctx, translationCode, original)
	if err != nil {
		return nil, err
	}
	word.Examples = examples
	word.Idioms = idioms

	p.log.DebugContext(ctx, "dictionary lookup",
		slog.String("translation_code", translationCode),
		slog.String("original", original),
		slog.Int("translations", len(word.Translations)),
		slog.Int("examples", len(word.Examples)),
	)

	return word, nil
}

func (p *Provider) lookup(ctx context.Context, translationCode, original string) (lookupNamespace, error) {
	q := url.Values{}
	q.Set("text", original)
	q.Set("lang", translationCode)
	q.Set("flags", "15783")
	q.Set("dict", translationCode)

	var resp lookupResponse
	if err := p.getJSON(ctx, "/lookupMultiple", q, &resp); err != nil {
		return lookupNamespace{}, err
	}
	return resp[translationCode], nil
}

func (p *Provider) lookupExclusive(ctx context.Context, translationCode, original string) (lookupNamespace, error) {
	q := url.Values{}
	q.Set("srv", "tr-text")
	q.Set("text", original)
	q.Set("type", "regular")
	q.Set("lang", translationCode)
	q.Set("flags", "1255")
	q.Set("dict", translationCode+".regular")

	var resp lookupResponse
	if err := p.getJSON(ctx, "/lookupMultiple", q, &resp); err != nil {
		return lookupNamespace{}, err
	}
	return resp[translationCode], nil
}

func (p *Provider) corpus(ctx context.Context, translationCode, original string) (examples, idioms []domain.SentencePair, err error) {
	q := url.Values{}
	q.Set("srv", "tr-text")
	q.Set("text", original)
	q.Set("type", "")
	q.Set("lang", translationCode)
	q.Set("flags", "1063")
	q.Set("src", original)
	q.Set("chunks", "1")
	q.Set("maxlen", "200")
	q.Set("v", "2")

	var resp corpusResponse
	if err := p.getJSON(ctx, "/queryCorpus", q, &resp); err != nil {
		return nil, nil, err
	}

	for _, ex := range resp.Result.Examples {
		pair := domain.SentencePair{Original: ex.Src, Translation: ex.Dst}
		if ex.Ref.Type == "idiom" {
			if len(idioms) < maxIdioms {
				idioms = append(idioms, pair)
			}
		} else if len(examples) < maxExamples {
			examples = append(examples, pair)
		}
	}
	return examples, idioms, nil
}

func (p *Provider) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	reqURL := p.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("yandict: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		p.log.ErrorContext(ctx, "dictionary request failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("yandict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yandict: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yandict: read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yandict: decode json: %w", err)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "dictionary retry", slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(p.retryBackoff)

	resp, err = p.httpClient.Do(req)
	return resp, err
}

// correctedOriginal returns the headword as the dictionary spells it.
func correctedOriginal(ns lookupNamespace) string {
	for _, article := range ns.Regular {
		return article.Text
	}
	return ""
}

func transcriptions(ns lookupNamespace) []string {
	var result []string
	for _, article := range ns.Regular {
		if article.Ts == "" || contains(result, article.Ts) {
			continue
		}
		result = append(result, article.Ts)
	}
	return result
}

func regularTranslations(ns lookupNamespace) []string {
	var result []string
	for _, article := range ns.Regular {
		for _, tr := range head(article.Tr, maxTranslationsPerArticle) {
			if !contains(result, tr.Text) {
				result = append(result, tr.Text)
			}
		}
	}
	return result
}

func exclusiveTranslations(ns lookupNamespace) []string {
	var result []string
	for _, article := range ns.Def {
		for _, tr := range head(article.Tr, maxTranslationsPerArticle) {
			if !contains(result, tr.Def) {
				result = append(result, tr.Def)
			}
		}
	}
	return result
}

// verbForms extracts the past indefinite and past participle rows from
// the verb paradigm table.
func verbForms(ns lookupNamespace) (indefinite, participle []string) {
	for _, article := range ns.Regular {
		if article.Pos == nil || article.Pos.Tooltip != "verb" || article.Prdg == nil {
			continue
		}
		rows := paradigmRows(article.Prdg)
		if len(rows) < 3 {
			continue
		}
		indefinite = stripHad(rows[0])
		participle = stripHad(rows[2])
	}
	return indefinite, participle
}

func nounPlural(ns lookupNamespace) []string {
	var result []string
	for _, article := range ns.Regular {
		if article.Pos == nil || article.Pos.Tooltip != "noun" || article.Prdg == nil {
			continue
		}
		rows := paradigmRows(article.Prdg)
		if len(rows) > 0 && len(rows[0]) > 1 {
			result = append(result, rows[0][1])
		}
	}
	return result
}

func paradigmRows(prdg *paradigm) [][]string {
	if len(prdg.Data) == 0 || len(prdg.Data[0].Tables) == 0 {
		return nil
	}
	return prdg.Data[0].Tables[0].Rows
}

func stripHad(row []string) []string {
	result := make([]string, 0, len(row))
	for _, form := range row {
		result = append(result, strings.ReplaceAll(form, "(had) ", ""))
	}
	return result
}

func head(trs []lookupTr, n int) []lookupTr {
	if len(trs) > n {
		return trs[:n]
	}
	return trs
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
