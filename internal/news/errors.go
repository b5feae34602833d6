package news

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrRunInProgress = errors.New("a scrape run is already in progress")
	ErrUnknownSource = errors.New("unknown scraper source")
	ErrEmptyResponse = errors.New("empty response body")
	ErrMissingTitle  = errors.New("detail page has no title")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError wraps errors that occur while extracting candidates from
// a source's markup.
type ExtractError struct {
	Source string
	URL    string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// StoreError wraps errors from the headline store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
