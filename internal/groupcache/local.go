package groupcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Local is an in-process verdict cache. It is safe for concurrent use.
type Local struct {
	lru *expirable.LRU[verdictKey, bool]
}

// NewLocal creates a cache holding at most size verdicts, each for at most
// ttl. A zero ttl disables time-based expiry.
func NewLocal(size int, ttl time.Duration) *Local {
	if size <= 0 {
		size = 1
	}
	return &Local{
		lru: expirable.NewLRU[verdictKey, bool](size, nil, ttl),
	}
}

func (l *Local) Get(user, group string) (member bool, found bool) {
	if l == nil {
		return false, false
	}
	return l.lru.Get(verdictKey{User: user, Group: group})
}

func (l *Local) Set(user, group string, member bool) {
	if l == nil {
		return
	}
	l.lru.Add(verdictKey{User: user, Group: group}, member)
}

func (l *Local) Delete(user, group string) {
	if l == nil {
		return
	}
	l.lru.Remove(verdictKey{User: user, Group: group})
}

func (l *Local) Len() int {
	if l == nil {
		return 0
	}
	return l.lru.Len()
}
