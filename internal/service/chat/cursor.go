package chat

import "github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"

// Update is what changed on a page since a Cursor last looked.
type Update struct {
	Messages    []chat.Message
	Busy        bool
	BusyChanged bool
}

// Cursor follows a page from a known position. It is not safe for concurrent use.
type Cursor struct {
	page *Page
	seen int
	gen  uint64
}

// Follow returns the current state and a cursor positioned right after it, so a
// reader that renders the state and then applies every Update sees each message once.
func (p *Page) Follow() (State, *Cursor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.stateLocked()
	return st, &Cursor{page: p, seen: len(st.Messages), gen: p.busyGen}
}

// Next returns the messages appended since the previous call and the busy flag.
// BusyChanged is set whenever the flag moved since the previous call, even if
// it is back where it was; Busy always carries the current value.
func (c *Cursor) Next() Update {
	c.page.mu.Lock()
	busy := c.page.busy.Load()
	gen := c.page.busyGen
	c.page.mu.Unlock()

	msgs := c.page.Since(c.seen)
	c.seen += len(msgs)

	u := Update{Messages: msgs, Busy: busy, BusyChanged: gen != c.gen}
	c.gen = gen
	return u
}
