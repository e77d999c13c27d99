package property

import (
	"context"
	"sync"
)

// Space is an in-process shared space. Each participant joins as a Peer,
// which implements Store.
type Space struct {
	mu        sync.Mutex
	public    map[string]string
	protected map[string]string
	peers     map[*Peer]struct{}
}

// NewSpace creates an empty space.
func NewSpace() *Space {
	return &Space{
		public:    make(map[string]string),
		protected: make(map[string]string),
		peers:     make(map[*Peer]struct{}),
	}
}

// Join attaches a new peer. An empty userID leaves the peer's identity
// unknown until Identify is called.
func (s *Space) Join(userID string) *Peer {
	p := &Peer{space: s, user: userID, notes: newNotifier()}

	s.mu.Lock()
	s.peers[p] = struct{}{}
	s.mu.Unlock()

	return p
}

// SetProtected writes key in the protected scope. Protected values are
// owned by the space host rather than by peers.
func (s *Space) SetProtected(key, value string) {
	s.set(ScopeProtected, key, value)
}

// Snapshot copies the current contents of one scope.
func (s *Space) Snapshot(scope Scope) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.public
	if scope == ScopeProtected {
		src = s.protected
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Entry returns key's raw value in one scope, without precedence.
func (s *Space) Entry(scope Scope, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope == ScopeProtected {
		v, ok := s.protected[key]
		return v, ok
	}
	v, ok := s.public[key]
	return v, ok
}

func (s *Space) set(scope Scope, key, value string) {
	s.mu.Lock()
	if scope == ScopeProtected {
		s.protected[key] = value
	} else {
		s.public[key] = value
	}
	peers := make([]*Peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.notes.Publish(key)
	}
}

func (s *Space) get(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.public, s.protected, key)
}

func (s *Space) leave(p *Peer) {
	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
}

// Peer is one participant's view of a Space.
type Peer struct {
	space *Space
	notes *notifier

	mu     sync.Mutex
	user   string
	closed bool
}

// Get implements Store.
func (p *Peer) Get(ctx context.Context, key string) (Value, bool, error) {
	if err := p.check(ctx); err != nil {
		return Value{}, false, err
	}
	v, ok := p.space.get(key)
	return v, ok, nil
}

// SetPublic implements Store.
func (p *Peer) SetPublic(ctx context.Context, key, value string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.space.set(ScopePublic, key, value)
	return nil
}

// Changes implements Store.
func (p *Peer) Changes() <-chan Change {
	return p.notes.C()
}

// LocalUser implements Store.
func (p *Peer) LocalUser() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.user != ""
}

// Identify sets the peer's identity once the host has assigned one.
func (p *Peer) Identify(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = userID
}

// Close detaches the peer from the space.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.space.leave(p)
	p.notes.Close()
	return nil
}

func (p *Peer) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}
