package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordrooms/internal/testutil"
)

type WiktionarySuite struct {
	suite.Suite
	server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	pages    map[string]string // "lang/word" -> response body
	status   int
	failing  map[string]int // lang -> status returned for every request
}

func TestWiktionarySuite(t *testing.T) {
	suite.Run(t, new(WiktionarySuite))
}

const (
	presentBody = `{"batchcomplete":"","query":{"pages":{"12345":{"pageid":12345,"ns":0,"title":"кот"}}}}`
	missingBody = `{"batchcomplete":"","query":{"pages":{"-1":{"ns":0,"title":"жмых","missing":""}}}}`
)

func (s *WiktionarySuite) SetupTest() {
	s.requests = nil
	s.pages = make(map[string]string)
	s.status = http.StatusOK
	s.failing = make(map[string]int)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r)
		lang := strings.TrimPrefix(r.URL.Path, "/")
		status := s.status
		if code, ok := s.failing[lang]; ok {
			status = code
		}
		body, ok := s.pages[lang+"/"+r.URL.Query().Get("titles")]
		s.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if !ok {
			body = missingBody
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func (s *WiktionarySuite) TearDownTest() {
	s.server.Close()
}

func (s *WiktionarySuite) verifier() *Wiktionary {
	cfg := DefaultConfig()
	cfg.Endpoint = s.server.URL + "/{lang}"
	return NewWiktionary(cfg, s.server.Client(), testutil.NopLogger())
}

func (s *WiktionarySuite) TestFoundInFirstLanguage() {
	s.pages["ru/кот"] = presentBody

	found, err := s.verifier().Exists(context.Background(), "кот")
	s.Require().NoError(err)
	s.True(found)
	s.Len(s.requests, 1, "Should stop at the first language with the page")

	q := s.requests[0].URL.Query()
	s.Equal("query", q.Get("action"))
	s.Equal("json", q.Get("format"))
	s.Equal("info", q.Get("prop"))
}

func (s *WiktionarySuite) TestFallsThroughToSecondLanguage() {
	s.pages["en/cat"] = `{"query":{"pages":{"99":{"pageid":99,"title":"cat"}}}}`

	found, err := s.verifier().Exists(context.Background(), "cat")
	s.Require().NoError(err)
	s.True(found)
	s.Len(s.requests, 2)
}

func (s *WiktionarySuite) TestMissingEverywhere() {
	found, err := s.verifier().Exists(context.Background(), "жмых")
	s.Require().NoError(err)
	s.False(found)
	s.Len(s.requests, 2)
}

func (s *WiktionarySuite) TestMissingKeyWithRealPageID() {
	s.pages["ru/слово"] = `{"query":{"pages":{"7":{"title":"слово","missing":""}}}}`

	found, err := s.verifier().Exists(context.Background(), "слово")
	s.Require().NoError(err)
	s.False(found)
}

func (s *WiktionarySuite) TestNon2xxIsError() {
	s.status = http.StatusServiceUnavailable

	_, err := s.verifier().Exists(context.Background(), "кот")
	s.Error(err)
}

func (s *WiktionarySuite) TestFailedLanguageFallsThrough() {
	s.failing["ru"] = http.StatusServiceUnavailable
	s.pages["en/кот"] = presentBody

	found, err := s.verifier().Exists(context.Background(), "кот")
	s.Require().NoError(err)
	s.True(found)
	s.Len(s.requests, 2)
}

func (s *WiktionarySuite) TestFailedLanguageAndMissingIsError() {
	s.failing["ru"] = http.StatusServiceUnavailable

	found, err := s.verifier().Exists(context.Background(), "кот")
	s.ErrorContains(err, "ru")
	s.False(found)
	s.Len(s.requests, 2, "Remaining languages are still tried")
}

func (s *WiktionarySuite) TestInvalidJSONIsError() {
	s.pages["ru/кот"] = `not json`

	_, err := s.verifier().Exists(context.Background(), "кот")
	s.Error(err)
}

func (s *WiktionarySuite) TestCancelledContext() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := s.verifier().Exists(ctx, "кот")
	s.Error(err)
}
