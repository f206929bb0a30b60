package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RemoteConfig controls the remote document store client.
type RemoteConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration // per-request; default 15s
	Retry     RetryConfig   // zero value uses defaults
	WriteRate rate.Limit    // write ops/sec; 0 means unlimited
	Logger    zerolog.Logger
}

func (c RemoteConfig) retryConfig() RetryConfig {
	if c.Retry.MaxAttempts == 0 {
		return DefaultRetryConfig()
	}
	return c.Retry
}

// RemoteCollection is one entity type's sub-collections in the remote
// document store, one per owning user. Implements MirrorProvider.
type RemoteCollection[T Record[T]] struct {
	cfg        RemoteConfig
	collection string
	hc         *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewRemoteCollection builds a client for one entity type.
func NewRemoteCollection[T Record[T]](cfg RemoteConfig, collection string) *RemoteCollection[T] {
	to := cfg.Timeout
	if to == 0 {
		to = 15 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.WriteRate > 0 {
		limiter = rate.NewLimiter(cfg.WriteRate, 1)
	}
	return &RemoteCollection[T]{
		cfg:        cfg,
		collection: collection,
		hc:         &http.Client{Timeout: to},
		limiter:    limiter,
		log:        cfg.Logger.With().Str("collection", collection).Logger(),
	}
}

// ForUser scopes the client to one user's sub-collection.
func (r *RemoteCollection[T]) ForUser(userID string) Mirror[T] {
	return &userMirror[T]{parent: r, userID: userID}
}

// document is the wire shape: record fields plus a server-stamped
// modification time that is stripped before records are surfaced.
type document[T any] struct {
	ID       string `json:"id"`
	Modified int64  `json:"modified,omitempty"`
	Record   T      `json:"record"`
}

type listResponse[T any] struct {
	Items []document[T] `json:"items"`
}

type userMirror[T Record[T]] struct {
	parent *RemoteCollection[T]
	userID string
}

func (m *userMirror[T]) collectionURL() string {
	return fmt.Sprintf("%s/v1/users/%s/%s",
		m.parent.cfg.BaseURL, url.PathEscape(m.userID), url.PathEscape(m.parent.collection))
}

func orderParam(o Order) string {
	if o.Field == "" {
		return ""
	}
	dir := "asc"
	if o.Desc {
		dir = "desc"
	}
	return o.Field + "." + dir
}

// ListAll fetches the full remote snapshot in the given order.
func (m *userMirror[T]) ListAll(ctx context.Context, order Order) ([]T, error) {
	u := m.collectionURL()
	if p := orderParam(order); p != "" {
		u += "?order=" + url.QueryEscape(p)
	}
	return WithRetry(ctx, m.parent.cfg.retryConfig(), "list", m.parent.collection, m.userID,
		func() ([]T, error) {
			var out listResponse[T]
			if err := m.parent.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
				return nil, err
			}
			recs := make([]T, 0, len(out.Items))
			for _, doc := range out.Items {
				recs = append(recs, doc.Record)
			}
			return recs, nil
		})
}

// UpsertOne writes the full record document. The server assigns the
// modification stamp.
func (m *userMirror[T]) UpsertOne(ctx context.Context, rec T) error {
	if err := m.parent.limiter.Wait(ctx); err != nil {
		return err
	}
	id := rec.meta().ID
	body, err := json.Marshal(document[T]{ID: id, Record: rec})
	if err != nil {
		return err
	}
	_, err = WithRetry(ctx, m.parent.cfg.retryConfig(), "upsert", m.parent.collection, m.userID,
		func() (struct{}, error) {
			return struct{}{}, m.parent.doJSON(ctx, http.MethodPut, m.collectionURL()+"/"+url.PathEscape(id), body, nil)
		})
	return err
}

// DeleteOne removes the document with the given id.
func (m *userMirror[T]) DeleteOne(ctx context.Context, id string) error {
	if err := m.parent.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := WithRetry(ctx, m.parent.cfg.retryConfig(), "delete", m.parent.collection, m.userID,
		func() (struct{}, error) {
			return struct{}{}, m.parent.doJSON(ctx, http.MethodDelete, m.collectionURL()+"/"+url.PathEscape(id), nil, nil)
		})
	return err
}

// Subscribe opens the live feed over a websocket. Every server frame
// carries the full current snapshot; the first frame arrives
// immediately after the dial. The returned stop func closes the feed.
func (m *userMirror[T]) Subscribe(order Order, onChange func([]T), onError func(error)) (func(), error) {
	u := m.collectionURL() + "/watch"
	if p := orderParam(order); p != "" {
		u += "?order=" + url.QueryEscape(p)
	}
	u = strings.Replace(u, "http", "ws", 1)

	header := http.Header{}
	if m.parent.cfg.AuthToken != "" {
		header.Set("Authorization", "Bearer "+m.parent.cfg.AuthToken)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		return nil, fmt.Errorf("%w: dial watch: %v", ErrRemoteUnavailable, err)
	}

	var closed atomic.Bool
	go func() {
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				if !closed.Load() {
					onError(fmt.Errorf("%w: watch feed: %v", ErrRemoteUnavailable, err))
				}
				return
			}
			var out listResponse[T]
			if err := json.Unmarshal(frame, &out); err != nil {
				m.parent.log.Warn().Err(err).Msg("malformed watch frame dropped")
				continue
			}
			recs := make([]T, 0, len(out.Items))
			for _, doc := range out.Items {
				recs = append(recs, doc.Record)
			}
			// A frame read just as stop() runs must not be delivered.
			if closed.Load() {
				return
			}
			onChange(recs)
		}
	}()

	stop := func() {
		closed.Store(true)
		_ = conn.Close()
	}
	return stop, nil
}

// doJSON performs one request, mapping HTTP failures to the error
// taxonomy: 401/403 are not retryable, 5xx and transport errors are.
func (r *RemoteCollection[T]) doJSON(ctx context.Context, method, u string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if r.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.AuthToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrServerError, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s %s: %s", method, u, resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
