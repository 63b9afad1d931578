package request

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	// DefaultResultsLimit is used when no limit is given
	DefaultResultsLimit = 20
	// MaxResultsLimit caps how many summaries one request may return
	MaxResultsLimit = 100
)

var ErrInvalidLimit = errors.New("limit must be an integer between 1 and 100")

// CheckWordQuery holds the query parameters of GET /check_word
type CheckWordQuery struct {
	Word string
}

// ParseCheckWordQuery reads the word parameter
func ParseCheckWordQuery(r *http.Request) CheckWordQuery {
	return CheckWordQuery{Word: r.URL.Query().Get("word")}
}

// ResultsQuery holds the query parameters of GET /results
type ResultsQuery struct {
	Limit int
}

// ParseResultsQuery reads and bounds the limit parameter
func ParseResultsQuery(r *http.Request) (ResultsQuery, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return ResultsQuery{Limit: DefaultResultsLimit}, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxResultsLimit {
		return ResultsQuery{}, ErrInvalidLimit
	}
	return ResultsQuery{Limit: limit}, nil
}
