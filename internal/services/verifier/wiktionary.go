package verifier

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
)

// DefaultEndpoint is the MediaWiki API URL; {lang} is replaced per language
const DefaultEndpoint = "https://{lang}.wiktionary.org/w/api.php"

// Verifier checks whether a word exists in some remote lexical source
type Verifier interface {
	Exists(ctx context.Context, word string) (bool, error)
}

// Config holds Wiktionary client settings
type Config struct {
	Endpoint  string
	Languages []string
	Timeout   time.Duration // per HTTP request; zero means rely on the caller's context
}

// DefaultConfig returns the default Wiktionary configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		Languages: []string{"ru", "en"},
		Timeout:   3 * time.Second,
	}
}

// Wiktionary looks words up through the MediaWiki query API
type Wiktionary struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewWiktionary creates a Wiktionary verifier. A nil client uses a default one.
func NewWiktionary(cfg Config, client *http.Client, logger *slog.Logger) *Wiktionary {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Wiktionary{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "verifier")),
	}
}

var _ Verifier = (*Wiktionary)(nil)

type queryResponse struct {
	Query struct {
		Pages map[string]map[string]json.RawMessage `json:"pages"`
	} `json:"query"`
}

// Exists reports true at the first language whose wiki has a page for the word.
// A failed language does not stop the search; its error is returned only when
// no language has the page.
func (w *Wiktionary) Exists(ctx context.Context, word string) (bool, error) {
	var firstErr error
	for _, lang := range w.cfg.Languages {
		found, err := w.lookup(ctx, lang, word)
		if err != nil {
			w.logger.Warn("wiktionary lookup failed",
				slog.String("word", word),
				slog.String("lang", lang),
				slog.Any("error", err),
			)
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if found {
			w.logger.Debug("word found",
				slog.String("word", word),
				slog.String("lang", lang),
			)
			return true, nil
		}
	}
	return false, firstErr
}

func (w *Wiktionary) lookup(ctx context.Context, lang, word string) (bool, error) {
	endpoint := strings.ReplaceAll(w.cfg.Endpoint, "{lang}", lang)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "info")
	params.Set("titles", word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("building %s request: %w", lang, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("querying %s wiktionary: %w", lang, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("querying %s wiktionary: unexpected status %d", lang, resp.StatusCode)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decoding %s wiktionary response: %w", lang, err)
	}

	for pageID, page := range body.Query.Pages {
		if pageID == "-1" {
			continue
		}
		if _, missing := page["missing"]; missing {
			continue
		}
		return true, nil
	}
	return false, nil
}
