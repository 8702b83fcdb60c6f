package arrangementsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"arrangement/internal/config"
	"arrangement/internal/domain"
	"arrangement/internal/domain/entities"
	"arrangement/internal/ports/output"
)

var _ output.ArrangementAPI = (*Client)(nil)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zerolog.Logger
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, log *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func eventPath(eventID string, rest ...string) (string, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidEventID, eventID)
	}
	p := "/events/" + eventID
	for _, r := range rest {
		p += "/" + r
	}
	return p, nil
}

func withQuery(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("arrangement api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: userMessage(resp.Header.Get("Content-Type"), b),
		}
	}
	return resp, nil
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func notFound(err error, sentinel error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func (c *Client) PostEvent(ctx context.Context, body entities.EventWriteModel) (entities.NewEventViewModel, error) {
	var out entities.NewEventViewModel
	err := c.do(ctx, http.MethodPost, "/events", body, &out)
	return out, err
}

func (c *Client) PutEvent(ctx context.Context, eventID, editToken string, body entities.EventWriteModel) (entities.EventViewModel, error) {
	var out entities.EventViewModel
	p, err := eventPath(eventID)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPut, withQuery(p, "editToken", editToken), body, &out)
	return out, notFound(err, domain.ErrEventNotFound)
}

func (c *Client) GetEvent(ctx context.Context, eventID string) (entities.EventViewModel, error) {
	var out entities.EventViewModel
	p, err := eventPath(eventID)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodGet, p, nil, &out)
	return out, notFound(err, domain.ErrEventNotFound)
}

func (c *Client) GetEvents(ctx context.Context) ([]entities.EventWithID, error) {
	var out []entities.EventWithID
	err := c.do(ctx, http.MethodGet, "/events", nil, &out)
	return out, err
}

func (c *Client) GetPastEvents(ctx context.Context) ([]entities.EventWithID, error) {
	var out []entities.EventWithID
	err := c.do(ctx, http.MethodGet, "/events/previous", nil, &out)
	return out, err
}

// DeleteEvent cancels the event. The message is mailed to participants.
func (c *Client) DeleteEvent(ctx context.Context, eventID, editToken, cancellationMessage string) error {
	p, err := eventPath(eventID)
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodDelete, withQuery(p, "editToken", editToken), cancellationMessage, nil)
	return notFound(err, domain.ErrEventNotFound)
}

func (c *Client) GetEventIDByShortname(ctx context.Context, shortname string) (string, error) {
	var id string
	err := c.do(ctx, http.MethodGet, withQuery("/events/id", "shortname", shortname), nil, &id)
	return id, notFound(err, domain.ErrEventNotFound)
}

func (c *Client) GetParticipants(ctx context.Context, eventID, editToken string) (entities.ParticipantViewModelsWithWaitingList, error) {
	var out entities.ParticipantViewModelsWithWaitingList
	p, err := eventPath(eventID, "participants")
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodGet, withQuery(p, "editToken", editToken), nil, &out)
	return out, err
}

func (c *Client) GetNumberOfParticipants(ctx context.Context, eventID string) (int, error) {
	var n int
	p, err := eventPath(eventID, "participants", "count")
	if err != nil {
		return 0, err
	}
	err = c.do(ctx, http.MethodGet, p, nil, &n)
	return n, err
}

// GetParticipantExport returns the raw export file.
func (c *Client) GetParticipantExport(ctx context.Context, eventID, editToken string) ([]byte, error) {
	p, err := eventPath(eventID, "participants", "export")
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodGet, withQuery(p, "editToken", editToken), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) GetWaitinglistSpot(ctx context.Context, eventID, email string) (int, error) {
	var n int
	p, err := eventPath(eventID, "participants", url.PathEscape(email), "waitinglist-spot")
	if err != nil {
		return 0, err
	}
	err = c.do(ctx, http.MethodGet, p, nil, &n)
	return n, err
}

func (c *Client) PostParticipant(ctx context.Context, eventID, email string, body entities.ParticipantWriteModel) (entities.NewParticipantViewModel, error) {
	var out entities.NewParticipantViewModel
	p, err := eventPath(eventID, "participants", url.PathEscape(email))
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, p, body, &out)
	return out, notFound(err, domain.ErrEventNotFound)
}

func (c *Client) DeleteParticipant(ctx context.Context, eventID, email, cancellationToken string) error {
	p, err := eventPath(eventID, "participants", url.PathEscape(email))
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodDelete, withQuery(p, "cancellationToken", cancellationToken), nil, nil)
	return notFound(err, domain.ErrParticipantNotFound)
}

func (c *Client) GetEventsAndParticipations(ctx context.Context, employeeID int) (entities.EventsAndParticipations, error) {
	var out entities.EventsAndParticipations
	err := c.do(ctx, http.MethodGet, "/events-and-participations/"+strconv.Itoa(employeeID), nil, &out)
	return out, err
}

// GetOfficeEventsByDate lists office calendar entries for the day starting
// at date (RFC 3339).
func (c *Client) GetOfficeEventsByDate(ctx context.Context, date string) ([]entities.OfficeEvent, error) {
	var out []entities.OfficeEvent
	err := c.do(ctx, http.MethodGet, "/office-events/"+url.PathEscape(date), nil, &out)
	return out, err
}

// GetClientConfig reads the configuration the API publishes for clients.
// The path is relative to origin, not to the API base.
func GetClientConfig(ctx context.Context, origin string, timeout time.Duration) (config.RemoteConfig, error) {
	var out config.RemoteConfig
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/api/config", nil)
	if err != nil {
		return out, err
	}
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return out, fmt.Errorf("get client config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, &APIError{Method: http.MethodGet, Path: "/api/config", Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode client config: %w", err)
	}
	return out, nil
}
