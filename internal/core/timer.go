package core

import (
	"sync"
	"time"
)

// phaseTimer owns at most one outstanding deferred callback. Arming
// always cancels the previous instance first, and a callback that lost
// the race with a cancel never runs.
type phaseTimer struct {
	mu  sync.Mutex
	seq uint64
	t   *time.Timer
}

func (pt *phaseTimer) Arm(d time.Duration, fn func()) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.t != nil {
		pt.t.Stop()
	}
	pt.seq++
	seq := pt.seq
	pt.t = time.AfterFunc(d, func() {
		if !pt.current(seq) {
			return
		}
		fn()
	})
}

func (pt *phaseTimer) Cancel() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.t != nil {
		pt.t.Stop()
		pt.t = nil
	}
	pt.seq++
}

func (pt *phaseTimer) current(seq uint64) bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.seq == seq
}
