// Package realtime subscribes to row changes made by other sessions over
// the backend's websocket feed.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gravitrone/clientdesk/internal/api"
	"github.com/gravitrone/clientdesk/internal/grid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is one frame of the change feed.
type Message struct {
	Type      string     `json:"type"`
	Table     string     `json:"table"`
	Filter    string     `json:"filter,omitempty"`
	Record    api.Record `json:"record,omitempty"`
	OldRecord api.Record `json:"old_record,omitempty"`
}

// Change converts a change frame into a grid change. ok is false for
// frames that are not row changes.
func (m Message) Change(toRow func(api.Record) grid.Row) (grid.Change, bool) {
	rec := m.Record
	var typ grid.ChangeType
	switch strings.ToUpper(m.Type) {
	case "INSERT":
		typ = grid.ChangeInsert
	case "UPDATE":
		typ = grid.ChangeUpdate
	case "DELETE":
		typ = grid.ChangeDelete
		if len(m.OldRecord) > 0 {
			rec = m.OldRecord
		}
	default:
		return grid.Change{}, false
	}
	if rec.ID() == "" {
		return grid.Change{}, false
	}
	org, _ := rec["organization_id"].(string)
	client, _ := rec["client_id"].(string)
	row := toRow(rec)
	if typ == grid.ChangeUpdate {
		// Explicit nulls clear the field.
		for k, v := range rec {
			if v == nil {
				if row.Values == nil {
					row.Values = make(map[string]any)
				}
				row.Values[k] = nil
			}
		}
	}
	return grid.Change{
		Type:  typ,
		Scope: grid.Scope{OrganizationID: org, ClientID: client},
		Row:   row,
	}, true
}

// Subscriber dials the change feed.
type Subscriber struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
}

// NewSubscriber builds a subscriber for the backend at baseURL.
func NewSubscriber(baseURL, anonKey, accessToken string) (*Subscriber, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/realtime/v1/websocket")
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported realtime scheme %q", u.Scheme)
	}
	header := http.Header{}
	if anonKey != "" {
		header.Set("apikey", anonKey)
	}
	if accessToken != "" {
		header.Set("Authorization", "Bearer "+accessToken)
	}
	return &Subscriber{
		url:    u.String(),
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

// Feed is an open subscription. Messages is closed when the connection
// ends; Err reports why.
type Feed struct {
	Messages <-chan Message

	conn *websocket.Conn
	once sync.Once
	done chan struct{}

	mu  sync.Mutex
	err error
}

// Subscribe opens the feed for one table, filtered to an organization.
func (s *Subscriber) Subscribe(ctx context.Context, table, orgID string) (*Feed, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	sub := Message{Type: "subscribe", Table: table, Filter: "organization_id=eq." + orgID}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Message, 16)
	f := &Feed{Messages: out, conn: conn, done: make(chan struct{})}
	go f.readPump(out)
	go f.pingPump(ctx)
	log.Info().Str("table", table).Str("org", orgID).Msg("realtime subscribed")
	return f, nil
}

func (f *Feed) readPump(out chan<- Message) {
	defer close(out)
	defer f.Close()

	f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		f.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !f.closed() {
				f.setErr(err)
				log.Warn().Err(err).Msg("realtime feed closed")
			}
			return
		}
		var msg Message
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&msg); err != nil {
			log.Debug().Err(err).Msg("realtime frame skipped")
			continue
		}
		select {
		case out <- msg:
		case <-f.done:
			return
		}
	}
}

func (f *Feed) pingPump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := f.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			f.Close()
			return
		case <-f.done:
			return
		}
	}
}

// Close ends the subscription. It is safe to call more than once.
func (f *Feed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		f.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = f.conn.Close()
	})
	return err
}

// Err returns the error that ended the feed, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Feed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *Feed) closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// ErrClosed is returned by Next once the feed has ended cleanly.
var ErrClosed = errors.New("realtime feed closed")

// Next blocks for the next message.
func (f *Feed) Next(ctx context.Context) (Message, error) {
	select {
	case msg, ok := <-f.Messages:
		if !ok {
			if err := f.Err(); err != nil {
				return Message{}, err
			}
			return Message{}, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// ChangeStream yields the row changes of a feed as grid changes.
type ChangeStream struct {
	feed  *Feed
	toRow func(api.Record) grid.Row
}

// Changes wraps the feed so control frames are skipped and records are
// converted with toRow.
func (f *Feed) Changes(toRow func(api.Record) grid.Row) *ChangeStream {
	return &ChangeStream{feed: f, toRow: toRow}
}

// NextChange blocks for the next row change.
func (s *ChangeStream) NextChange(ctx context.Context) (grid.Change, error) {
	for {
		msg, err := s.feed.Next(ctx)
		if err != nil {
			return grid.Change{}, err
		}
		if ch, ok := msg.Change(s.toRow); ok {
			return ch, nil
		}
	}
}
