package picker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/snonux/wordofday/internal/entry"
)

// DefaultRemoteURL returns a JSON array with one random English word.
const DefaultRemoteURL = "https://random-word-api.herokuapp.com/word?number=1"

// RemotePicker asks a random-word service for a single bare word.
type RemotePicker struct {
	url        string
	httpClient *http.Client
}

// NewRemotePicker creates a picker backed by url.
func NewRemotePicker(url string, timeout time.Duration) *RemotePicker {
	if url == "" {
		url = DefaultRemoteURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemotePicker{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Pick implements Picker. The service cannot be told which word to avoid,
// so exclude is not enforced and a repeat of the previous word is accepted.
func (p *RemotePicker) Pick(ctx context.Context, exclude string) (entry.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return entry.Entry{}, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var words []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&words); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: invalid payload: %w", ErrFetch, err)
	}
	if len(words) == 0 {
		return entry.Entry{}, fmt.Errorf("%w: empty payload", ErrFetch)
	}

	word := strings.TrimSpace(words[0])
	if word == "" || strings.ContainsAny(word, " \t\n") {
		return entry.Entry{}, fmt.Errorf("%w: invalid word %q", ErrFetch, words[0])
	}

	return entry.Bare(word), nil
}

// Name implements Picker.
func (p *RemotePicker) Name() string {
	return "remote"
}
