package provider

import (
	"sync/atomic"
)

// Pool rotates across multiple Gemini clients, one per configured API key.
// Rotation is plain round-robin: each Acquire advances a shared cursor and
// returns the client at that position. Fairness only, not health-aware; a
// failing key is not exiled, it simply comes around again.
type Pool struct {
	clients []*Client
	cursor  atomic.Uint64
}

// NewPool builds a pool from API keys, skipping empty entries.
func NewPool(apiKeys []string) *Pool {
	p := &Pool{}
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		p.clients = append(p.clients, NewClient(key))
	}
	return p
}

// NewPoolWithClients builds a pool from pre-constructed clients (for testing).
func NewPoolWithClients(clients ...*Client) *Pool {
	return &Pool{clients: clients}
}

// Acquire returns the next client in rotation, or ErrUnconfigured when the
// pool is empty. Cursor advancement is atomic; slight unfairness under
// concurrent acquisition is acceptable.
func (p *Pool) Acquire() (*Client, error) {
	if len(p.clients) == 0 {
		return nil, ErrUnconfigured
	}
	n := p.cursor.Add(1) - 1
	return p.clients[n%uint64(len(p.clients))], nil
}

// Size returns the number of usable credentials.
func (p *Pool) Size() int {
	return len(p.clients)
}
