package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tiptravel/tip-web/internal/domain"
)

// ExchangeState is the lifecycle of one optimistic send.
type ExchangeState int

const (
	Pending ExchangeState = iota
	Confirmed
	RolledBack
)

func (s ExchangeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("ExchangeState(%d)", int(s))
}

// ErrNotPending is returned when an exchange has already settled.
var ErrNotPending = errors.New("client: exchange already settled")

// Exchange is one user message and, once confirmed, the concierge's reply.
type Exchange struct {
	ID      int
	Content string
	State   ExchangeState
	Reply   *ChatReply
	Err     error
}

// Conversation tracks a concierge session. Each Send appends a Pending
// exchange that moves to Confirmed or RolledBack exactly once; observers
// see every transition.
type Conversation struct {
	client    *Client
	sessionID string

	mu        sync.Mutex
	exchanges []Exchange
	observers map[uint64]func(Exchange)
	nextObs   uint64
}

func NewConversation(c *Client, sessionID string) *Conversation {
	return &Conversation{client: c, sessionID: sessionID, observers: make(map[uint64]func(Exchange))}
}

func (cv *Conversation) SessionID() string {
	return cv.sessionID
}

// Observe calls fn on every exchange transition. The returned func removes it.
func (cv *Conversation) Observe(fn func(Exchange)) (remove func()) {
	cv.mu.Lock()
	id := cv.nextObs
	cv.nextObs++
	cv.observers[id] = fn
	cv.mu.Unlock()

	return func() {
		cv.mu.Lock()
		delete(cv.observers, id)
		cv.mu.Unlock()
	}
}

// Send appends content optimistically and settles the exchange with the
// server's answer. A failed send is rolled back and its error returned.
func (cv *Conversation) Send(ctx context.Context, content string) (Exchange, error) {
	pending := cv.begin(content)

	reply, err := cv.client.SendMessage(ctx, MessageRequest{
		SessionID:   cv.sessionID,
		Content:     content,
		MessageType: domain.MessageTypeText,
	})
	if err != nil {
		settled, serr := cv.settle(pending.ID, RolledBack, nil, err)
		if serr != nil {
			return settled, serr
		}
		return settled, err
	}
	return cv.settle(pending.ID, Confirmed, reply, nil)
}

// Exchanges returns a copy of every exchange, including rolled back ones.
func (cv *Conversation) Exchanges() []Exchange {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return append([]Exchange(nil), cv.exchanges...)
}

// Transcript returns the visible turns: rolled back messages are dropped
// and pending ones have no reply yet.
func (cv *Conversation) Transcript() []domain.ChatTurn {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	var turns []domain.ChatTurn
	for _, ex := range cv.exchanges {
		if ex.State == RolledBack {
			continue
		}
		turns = append(turns, domain.ChatTurn{Role: domain.RoleUser, Content: ex.Content})
		if ex.State == Confirmed && ex.Reply != nil {
			turns = append(turns, domain.ChatTurn{Role: domain.RoleAssistant, Content: ex.Reply.Response})
		}
	}
	return turns
}

func (cv *Conversation) begin(content string) Exchange {
	cv.mu.Lock()
	ex := Exchange{ID: len(cv.exchanges), Content: content, State: Pending}
	cv.exchanges = append(cv.exchanges, ex)
	obs := cv.snapshotObservers()
	cv.mu.Unlock()

	notify(obs, ex)
	return ex
}

func (cv *Conversation) settle(id int, state ExchangeState, reply *ChatReply, err error) (Exchange, error) {
	cv.mu.Lock()
	if id < 0 || id >= len(cv.exchanges) {
		cv.mu.Unlock()
		return Exchange{}, fmt.Errorf("client: unknown exchange %d", id)
	}
	ex := &cv.exchanges[id]
	if ex.State != Pending {
		cur := *ex
		cv.mu.Unlock()
		return cur, ErrNotPending
	}
	ex.State = state
	ex.Reply = reply
	ex.Err = err
	out := *ex
	obs := cv.snapshotObservers()
	cv.mu.Unlock()

	notify(obs, out)
	return out, nil
}

func (cv *Conversation) snapshotObservers() []func(Exchange) {
	obs := make([]func(Exchange), 0, len(cv.observers))
	for _, fn := range cv.observers {
		obs = append(obs, fn)
	}
	return obs
}

func notify(obs []func(Exchange), ex Exchange) {
	for _, fn := range obs {
		fn(ex)
	}
}
