package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the base of the public service API
	DefaultBaseURL = "https://api.neos.com/api/"
	// defaultRateLimitWait is used when a rate limited response carries no reset hint
	defaultRateLimitWait = 2 * time.Second
	// maxBodySize caps how much of a response body is decoded
	maxBodySize = 16 * 1024 * 1024
)

// NewHTTPClient returns an unauthenticated client for the service at baseURL
func NewHTTPClient(baseURL, userAgent string) (*HTTPClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse service base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("service base URL scheme %q not supported", u.Scheme)
	}

	return &HTTPClient{
		t: &transport{
			base:      u,
			userAgent: userAgent,
			http:      &http.Client{Timeout: 30 * time.Second},
			m:         &sync.Mutex{},
			now:       time.Now,
			sleep:     time.Sleep,
		},
	}, nil
}

// HTTPClient represents the service over its JSON HTTP API
type HTTPClient struct {
	t *transport
}

// Login exchanges credentials for a user session
func (c *HTTPClient) Login(cred Credentials) (UserSession, error) {
	machineID := strings.ReplaceAll(uuid.NewString(), "-", "")
	body := map[string]interface{}{
		"password":        cred.Password,
		"secretMachineId": machineID,
		"rememberMe":      cred.RememberMe,
	}
	if strings.Contains(cred.Identifier, "@") {
		body["email"] = cred.Identifier
	} else {
		body["username"] = cred.Identifier
	}
	header := http.Header{}
	if cred.TOTP != "" {
		header.Set("TOTP", cred.TOTP)
	}

	var s UserSession
	err := c.t.do(request{method: http.MethodPost, path: "userSessions", body: body, header: header}, &s)
	if err != nil {
		return UserSession{}, errors.Wrap(err, "login request failed")
	}
	if s.MachineID == "" {
		s.MachineID = machineID
	}

	return s, nil
}

// User looks up a user by id
func (c *HTTPClient) User(id string) (User, error) {
	var u User
	err := c.t.do(request{method: http.MethodGet, path: path.Join("users", id)}, &u)
	return u, errors.Wrapf(err, "failed to get user %s", id)
}

// UserStatus looks up the presence of a user
func (c *HTTPClient) UserStatus(id string) (UserStatus, error) {
	var s UserStatus
	err := c.t.do(request{method: http.MethodGet, path: path.Join("users", id, "status")}, &s)
	return s, errors.Wrapf(err, "failed to get status of user %s", id)
}

// Session looks up a session by id
func (c *HTTPClient) Session(id string) (SessionInfo, error) {
	var s SessionInfo
	err := c.t.do(request{method: http.MethodGet, path: path.Join("sessions", id)}, &s)
	return s, errors.Wrapf(err, "failed to get session %s", id)
}

// SearchUsers looks up users by name
func (c *HTTPClient) SearchUsers(query string) ([]User, error) {
	var users []User
	err := c.t.do(request{method: http.MethodGet, path: "users", query: url.Values{"name": {query}}}, &users)
	return users, errors.Wrapf(err, "failed to search users for %q", query)
}

// Authenticate returns a client using the provided session
func (c *HTTPClient) Authenticate(s UserSession) AuthClient {
	return &HTTPAuthClient{HTTPClient: c, session: s}
}

// HTTPAuthClient represents the service over its JSON HTTP API with a user session
type HTTPAuthClient struct {
	*HTTPClient
	session UserSession
}

// UserSession returns the session the client authenticates with
func (c *HTTPAuthClient) UserSession() UserSession {
	return c.session
}

// Downgrade returns the client without its session
func (c *HTTPAuthClient) Downgrade() Client {
	return c.HTTPClient
}

// Friends returns the contacts of the user
func (c *HTTPAuthClient) Friends() ([]Friend, error) {
	var friends []Friend
	err := c.authDo(request{method: http.MethodGet, path: path.Join("users", c.session.UserID, "friends")}, &friends)
	return friends, errors.Wrap(err, "failed to get friends")
}

// Sessions returns the sessions visible to the user
func (c *HTTPAuthClient) Sessions() ([]SessionInfo, error) {
	var sessions []SessionInfo
	err := c.authDo(request{method: http.MethodGet, path: "sessions"}, &sessions)
	return sessions, errors.Wrap(err, "failed to get sessions")
}

// Messages returns the latest messages of the user
func (c *HTTPAuthClient) Messages(limit int) ([]Message, error) {
	var messages []Message
	q := url.Values{"maxItems": {strconv.Itoa(limit)}}
	err := c.authDo(request{method: http.MethodGet, path: path.Join("users", c.session.UserID, "messages"), query: q}, &messages)
	return messages, errors.Wrap(err, "failed to get messages")
}

// SendMessage sends a message to its recipient
func (c *HTTPAuthClient) SendMessage(m Message) (Message, error) {
	if m.RecipientID == "" {
		return Message{}, errors.New("message has no recipient")
	}
	if m.ID == "" {
		m.ID = "MSG-" + uuid.NewString()
	}
	m.OwnerID = c.session.UserID
	m.SenderID = c.session.UserID
	if m.SendTime.IsZero() {
		m.SendTime = c.t.now().UTC()
	}

	var sent Message
	err := c.authDo(request{method: http.MethodPost, path: path.Join("users", m.RecipientID, "messages"), body: m}, &sent)
	if err != nil {
		return Message{}, errors.Wrapf(err, "failed to send message to %s", m.RecipientID)
	}

	return sent, nil
}

// AddFriend sends a friend request
func (c *HTTPAuthClient) AddFriend(id string) error {
	body := map[string]string{"id": id, "friendStatus": "Accepted"}
	err := c.authDo(request{method: http.MethodPut, path: path.Join("users", c.session.UserID, "friends", id), body: body}, nil)
	return errors.Wrapf(err, "failed to add friend %s", id)
}

// RemoveFriend removes a contact
func (c *HTTPAuthClient) RemoveFriend(id string) error {
	err := c.authDo(request{method: http.MethodDelete, path: path.Join("users", c.session.UserID, "friends", id)}, nil)
	return errors.Wrapf(err, "failed to remove friend %s", id)
}

// ExtendSession checks the session is still valid and extends its lifetime
func (c *HTTPAuthClient) ExtendSession() error {
	err := c.authDo(request{method: http.MethodPatch, path: "userSessions"}, nil)
	return errors.Wrap(err, "failed to extend user session")
}

// Logout invalidates the session on the service
func (c *HTTPAuthClient) Logout() error {
	err := c.authDo(request{method: http.MethodDelete, path: path.Join("userSessions", c.session.UserID, c.session.Token)}, nil)
	return errors.Wrap(err, "failed to log out")
}

func (c *HTTPAuthClient) authDo(r request, out interface{}) error {
	r.session = &c.session
	return c.t.do(r, out)
}

type request struct {
	method  string
	path    string
	query   url.Values
	header  http.Header
	body    interface{}
	session *UserSession
}

type transport struct {
	base             *url.URL
	userAgent        string
	http             *http.Client
	m                *sync.Mutex
	rateLimitedUntil time.Time
	now              func() time.Time
	sleep            func(time.Duration)
}

func (t *transport) do(r request, out interface{}) error {
	t.sleepIfRateLimited()

	u := *t.base
	u.Path = path.Join(u.Path, r.path)
	u.RawQuery = r.query.Encode()

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(r.method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	for name, values := range r.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if r.session != nil {
		req.Header.Set("Authorization", "neos "+r.session.UserID+":"+r.session.Token)
	}

	res, err := t.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer res.Body.Close()

	if err := t.handleResponse(r, res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	err = json.NewDecoder(io.LimitReader(res.Body, maxBodySize)).Decode(out)
	if err != nil {
		return errors.Wrap(err, "failed to parse response")
	}

	return nil
}

// handleResponse checks the status code and records rate limit hints
func (t *transport) handleResponse(r request, res *http.Response) error {
	if res.StatusCode == http.StatusTooManyRequests {
		t.applyRateLimit(res.Header)
		return ErrRateLimited
	}
	if res.Header.Get("X-Rate-Limit-Remaining") == "0" {
		t.applyRateLimit(res.Header)
	}
	if res.StatusCode == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "%s %s", r.method, r.path)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &StatusError{Code: res.StatusCode, Method: r.method, Path: r.path}
	}

	return nil
}

func (t *transport) applyRateLimit(h http.Header) {
	until := t.now().Add(defaultRateLimitWait)
	if reset, err := time.Parse(time.RFC3339, h.Get("X-Rate-Limit-Reset")); err == nil {
		until = reset
	} else if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil {
		until = t.now().Add(time.Duration(secs) * time.Second)
	}

	t.m.Lock()
	defer t.m.Unlock()
	if until.After(t.rateLimitedUntil) {
		t.rateLimitedUntil = until
	}
}

// sleepIfRateLimited blocks the calling worker until the rate limit has expired
func (t *transport) sleepIfRateLimited() {
	t.m.Lock()
	wait := t.rateLimitedUntil.Sub(t.now())
	t.m.Unlock()

	if wait <= 0 {
		return
	}
	log.Infof("service rate limited, sleeping %s", wait)
	t.sleep(wait)
}
