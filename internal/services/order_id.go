package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	orderIDPrefix    = "ORD"
	orderIDSuffixLen = 5
	orderIDAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type IDGenerator interface {
	NewOrderID() string
}

// OrderIDGenerator produces ids shaped ORD-<unix millis>-<5 random chars>.
// The millisecond component never repeats within one generator, so ids from
// one process are unique; the random suffix separates processes. The store's
// primary key remains the final collision guard.
type OrderIDGenerator struct {
	mu      sync.Mutex
	lastMS  int64
	now     func() time.Time
	entropy io.Reader
}

func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{now: time.Now, entropy: rand.Reader}
}

func (g *OrderIDGenerator) NewOrderID() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.lastMS {
		ms = g.lastMS + 1
	}
	g.lastMS = ms
	g.mu.Unlock()

	return fmt.Sprintf("%s-%d-%s", orderIDPrefix, ms, g.suffix())
}

func (g *OrderIDGenerator) suffix() string {
	const limit = 252 // largest multiple of 36 below 256
	out := make([]byte, 0, orderIDSuffixLen)
	buf := make([]byte, 16)
	for len(out) < orderIDSuffixLen {
		if _, err := io.ReadFull(g.entropy, buf); err != nil {
			panic(fmt.Sprintf("order id entropy: %v", err))
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, orderIDAlphabet[int(b)%len(orderIDAlphabet)])
			if len(out) == orderIDSuffixLen {
				break
			}
		}
	}
	return string(out)
}
