//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"sync"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
)

var (
	errSessionExists = errors.New("session already exists")
	errSessionClosed = errors.New("session closed")
)

// subscriberBuffer is how many stream messages may queue for a slow client
// before further messages to it are dropped.
const subscriberBuffer = 64

// liveSession is one remote camera screen. The coordinator is single-threaded,
// so every call into it holds mu.
type liveSession struct {
	mu     sync.Mutex
	coord  *foodlens.Coordinator
	rec    *session.Recorder
	closed bool

	subMu   sync.Mutex
	subs    map[chan StreamMessage]struct{}
	subDone bool
}

// apply returns errSessionClosed once close has run.
func (ls *liveSession) apply(ctx context.Context, events []session.Event) ([]session.Outcome, error) {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return nil, errSessionClosed
	}
	outcomes := session.Replay(ctx, ls.coord, ls.rec, events)
	ls.mu.Unlock()

	for _, o := range outcomes {
		ls.broadcast(StreamMessage{Type: MsgTypeOutcome, Data: o, Success: o.Err == ""})
	}
	return outcomes, nil
}

func (ls *liveSession) snapshot() SessionResponse {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return SessionResponse{
		ID:            ls.coord.ID(),
		Mode:          ls.coord.Mode().String(),
		Zoom:          ls.coord.Zoom(),
		Ready:         ls.coord.Ready(),
		Paused:        ls.coord.Paused(),
		GestureActive: ls.coord.Gesture().Active,
		Crop:          ls.coord.RelativeFrame(),
	}
}

// subscribe returns nil once the session has been closed.
func (ls *liveSession) subscribe() chan StreamMessage {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()
	if ls.subDone {
		return nil
	}
	ch := make(chan StreamMessage, subscriberBuffer)
	ls.subs[ch] = struct{}{}
	return ch
}

func (ls *liveSession) unsubscribe(ch chan StreamMessage) {
	ls.subMu.Lock()
	if _, ok := ls.subs[ch]; ok {
		delete(ls.subs, ch)
		close(ch)
	}
	ls.subMu.Unlock()
}

// send queues msg for one subscriber only. It is a no-op once ch has been
// unsubscribed or the session closed.
func (ls *liveSession) send(ch chan StreamMessage, msg StreamMessage) {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()
	if _, ok := ls.subs[ch]; !ok {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

func (ls *liveSession) broadcast(msg StreamMessage) {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()
	for ch := range ls.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// close notifies subscribers and releases the coordinator.
func (ls *liveSession) close() error {
	ls.subMu.Lock()
	ls.subDone = true
	for ch := range ls.subs {
		select {
		case ch <- StreamMessage{Type: MsgTypeClosed, Success: true}:
		default:
		}
		close(ch)
		delete(ls.subs, ch)
	}
	ls.subMu.Unlock()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return nil
	}
	ls.closed = true
	return ls.coord.Close()
}

// sessionHub tracks live sessions by id.
type sessionHub struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func newSessionHub() *sessionHub {
	return &sessionHub{sessions: make(map[string]*liveSession)}
}

// create builds a coordinator wired to a fresh recorder and registers it.
func (h *sessionHub) create(opts ...foodlens.Option) (*liveSession, error) {
	rec := session.NewRecorder()
	coord, err := foodlens.NewCoordinator(append(opts, rec.Options()...)...)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[coord.ID()]; ok {
		coord.Close()
		return nil, errSessionExists
	}
	ls := &liveSession{coord: coord, rec: rec, subs: make(map[chan StreamMessage]struct{})}
	h.sessions[coord.ID()] = ls
	return ls, nil
}

func (h *sessionHub) get(id string) (*liveSession, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ls, ok := h.sessions[id]
	return ls, ok
}

func (h *sessionHub) remove(id string) (*liveSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ls, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	return ls, ok
}

func (h *sessionHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *sessionHub) closeAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*liveSession)
	h.mu.Unlock()

	for _, ls := range sessions {
		ls.close()
	}
}
