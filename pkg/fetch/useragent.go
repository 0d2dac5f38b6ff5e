package fetch

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultUserAgents are desktop browser identities rotated between requests.
var DefaultUserAgents = []string{ //nolint: gochecknoglobals
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// UserAgentPool picks a user agent per request from a fixed list using a
// seedable random source. It is safe for concurrent use.
type UserAgentPool struct {
	mu     sync.Mutex
	agents []string
	rnd    *rand.Rand
}

// NewUserAgentPool builds a pool over agents (DefaultUserAgents when empty). A
// nil rnd seeds a source from the wall clock.
func NewUserAgentPool(rnd *rand.Rand, agents ...string) *UserAgentPool {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	if rnd == nil {
		seed := uint64(time.Now().UnixNano()) //nolint: gosec
		rnd = rand.New(rand.NewPCG(seed, seed>>1)) //nolint: gosec
	}

	return &UserAgentPool{agents: agents, rnd: rnd}
}

// Pick returns one of the pool's user agents.
func (p *UserAgentPool) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.agents[p.rnd.IntN(len(p.agents))]
}
