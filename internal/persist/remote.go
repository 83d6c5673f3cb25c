package persist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pagesmith/internal/editor"
)

// Endpoint paths served by the profile API.
const (
	GetStatePath  = "/api/profile/get-state/"
	SaveStatePath = "/api/profile/save-state"
	UserHeader    = "X-Profile-User"
)

// RemoteStore talks to the profile endpoints over HTTP.
type RemoteStore struct {
	base   string
	token  string
	client *http.Client
}

// NewRemoteStore targets the server at base. A non-empty token is sent as
// a bearer credential.
func NewRemoteStore(base, token string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteStore{base: strings.TrimRight(base, "/"), token: token, client: client}
}

func (r *RemoteStore) Load(ctx context.Context, username string) (*editor.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+GetStatePath+url.PathEscape(username), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	r.authorize(req, username)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get state: %w", ErrPersistence, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: get state: %s", ErrPersistence, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read state: %w", ErrPersistence, err)
	}
	doc, err := editor.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return doc, nil
}

func (r *RemoteStore) Save(ctx context.Context, username string, doc *editor.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+SaveStatePath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req, username)
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: save state: %w", ErrPersistence, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: save state: %s", ErrPersistence, resp.Status)
	}
	return nil
}

func (r *RemoteStore) authorize(req *http.Request, username string) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
		return
	}
	req.Header.Set(UserHeader, username)
}
