package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/backend"
)

// DefaultDetectionDelay is how long the page waits before announcing a detected company.
const DefaultDetectionDelay = 500 * time.Millisecond

// Options tune a Page.
type Options struct {
	DetectionDelay time.Duration
	Now            func() time.Time
}

// State is a point-in-time copy of a page.
type State struct {
	ID         string         `json:"id"`
	Messages   []chat.Message `json:"messages"`
	Busy       bool           `json:"busy"`
	HasSession bool           `json:"hasSession"`
	SessionID  string         `json:"-"`
}

// Page is the state behind one open chat page: its conversation, the busy flag,
// the cached backend session and the timers it owns. Everything it starts is
// bound to its lifetime and stops when Close is called.
type Page struct {
	id     string
	client backend.Chatter
	delay  time.Duration
	now    func() time.Time
	log    zerolog.Logger

	conv *Conversation
	ids  IDGenerator
	busy atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	sessionID  string
	timers     map[*time.Timer]struct{}
	subs       map[int]chan struct{}
	nextSub    int
	lastActive time.Time
	closed     bool
	// busyGen counts busy transitions so followers notice a cycle that
	// started and ended between two reads.
	busyGen uint64
}

// NewPage creates an open page that talks to client.
func NewPage(id string, client backend.Chatter, opts Options) *Page {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	delay := opts.DetectionDelay
	if delay < 0 {
		delay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Page{
		id:         id,
		client:     client,
		delay:      delay,
		now:        now,
		log:        logger.Component("page").With().Str("page", id).Logger(),
		conv:       NewConversation(),
		ctx:        ctx,
		cancel:     cancel,
		timers:     make(map[*time.Timer]struct{}),
		subs:       make(map[int]chan struct{}),
		lastActive: now(),
	}
}

// ID returns the page identifier.
func (p *Page) ID() string {
	return p.id
}

// Submit starts one exchange with the backend for text.
// It returns false without side effects when text is blank, when an exchange
// is already in flight, or when the page is closed.
func (p *Page) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return false
	}
	p.busyGen++

	p.appendLocked(text, true)
	p.lastActive = p.now()
	p.wg.Add(1)
	p.mu.Unlock()

	go p.exchange(text)
	return true
}

func (p *Page) exchange(text string) {
	defer p.wg.Done()
	defer p.finish()

	req := chat.Request{Message: text, SessionID: p.SessionID()}
	resp, err := p.client.Chat(p.ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.log.Debug().Msg("page closed before the backend replied, dropping reply")
		return
	}

	if err != nil {
		p.log.Warn().Err(err).Msg("chat exchange failed")
		p.appendLocked(chat.FallbackReply, false)
		return
	}

	if p.sessionID == "" && resp.SessionID != "" {
		p.sessionID = resp.SessionID
		p.log.Info().Str("session", resp.SessionID).Msg("backend session established")
	}

	p.appendLocked(resp.Response, false)

	if resp.DetectedCompany != "" {
		p.scheduleDetectionLocked(resp.DetectedCompany)
	}
}

// finish clears the busy flag; it runs exactly once per accepted submission.
func (p *Page) finish() {
	p.mu.Lock()
	p.busy.Store(false)
	p.busyGen++
	p.notifyLocked()
	p.mu.Unlock()
}

func (p *Page) scheduleDetectionLocked(company string) {
	var timer *time.Timer

	p.wg.Add(1)
	timer = time.AfterFunc(p.delay, func() {
		defer p.wg.Done()

		p.mu.Lock()
		defer p.mu.Unlock()

		delete(p.timers, timer)
		if p.closed {
			return
		}
		p.appendLocked(chat.DetectionReply(company), false)
	})
	p.timers[timer] = struct{}{}
}

func (p *Page) appendLocked(content string, isUser bool) chat.Message {
	at := p.now()
	msg := chat.Message{
		ID:        p.ids.Next(at),
		Content:   content,
		IsUser:    isUser,
		Timestamp: at,
	}
	p.conv.Append(msg)
	p.notifyLocked()
	return msg
}

func (p *Page) notifyLocked() {
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a signal after every change to the
// page (a new message or a busy transition). Signals coalesce; readers should
// re-read state with Since or Snapshot. The returned func unsubscribes.
func (p *Page) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	p.lastActive = p.now()
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.lastActive = p.now()
			p.mu.Unlock()
		})
	}
}

// Messages returns the conversation, oldest first.
func (p *Page) Messages() []chat.Message {
	return p.conv.Messages()
}

// Since returns messages appended after the first n.
func (p *Page) Since(n int) []chat.Message {
	return p.conv.Since(n)
}

// Busy reports whether an exchange is in flight.
func (p *Page) Busy() bool {
	return p.busy.Load()
}

// SessionID returns the cached backend session, or "" before the first successful exchange.
func (p *Page) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// Snapshot copies the page state.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Page) stateLocked() State {
	return State{
		ID:         p.id,
		Messages:   p.conv.Messages(),
		Busy:       p.busy.Load(),
		HasSession: p.sessionID != "",
		SessionID:  p.sessionID,
	}
}

// Touch marks the page as in use.
func (p *Page) Touch() {
	p.mu.Lock()
	p.lastActive = p.now()
	p.mu.Unlock()
}

// Idle reports whether the page has no subscribers and has not been used since before cutoff.
func (p *Page) Idle(cutoff time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs) == 0 && !p.busy.Load() && p.lastActive.Before(cutoff)
}

// Done is closed when the page is closed.
func (p *Page) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Close tears the page down: the in-flight request is cancelled, pending
// detection messages are dropped and later submissions are ignored.
// It blocks until the page's goroutines have returned.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.cancel()
	for timer := range p.timers {
		if timer.Stop() {
			p.wg.Done()
		}
		delete(p.timers, timer)
	}
	p.notifyLocked()
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug().Msg("page closed")
}
