package actors

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
)

type timerEntry struct {
	timer *clock.Timer
	gen   uint64
}

// timers owns keyed, cancellable timers whose callbacks run on the supervisor loop.
//
// A fire that races with a cancel or a restart is discarded by comparing generations, so a stopped timer can never
// reach a dead actor.
type timers struct {
	clock  clock.Clock
	post   func(func())
	active map[string]timerEntry
	gen    uint64
}

func newTimers(c clock.Clock, post func(func())) *timers {
	return &timers{clock: c, post: post, active: make(map[string]timerEntry)}
}

func (ts *timers) start(key string, d time.Duration, fire func()) {
	ts.cancel(key)
	ts.gen++
	gen := ts.gen
	t := ts.clock.AfterFunc(d, func() {
		ts.post(func() { ts.fired(key, gen, fire) })
	})
	ts.active[key] = timerEntry{timer: t, gen: gen}
}

func (ts *timers) fired(key string, gen uint64, fire func()) {
	e, ok := ts.active[key]
	if !ok || e.gen != gen {
		return
	}
	delete(ts.active, key)
	fire()
}

func (ts *timers) cancel(key string) {
	if e, ok := ts.active[key]; ok {
		e.timer.Stop()
		delete(ts.active, key)
	}
}

// cancelPrefix stops every timer whose key starts with prefix.
func (ts *timers) cancelPrefix(prefix string) {
	for key := range ts.active {
		if strings.HasPrefix(key, prefix) {
			ts.cancel(key)
		}
	}
}

func (ts *timers) stopAll() {
	for key := range ts.active {
		ts.cancel(key)
	}
}

func (ts *timers) pending(key string) bool {
	_, ok := ts.active[key]
	return ok
}

func roomTimerPrefix(roomID string) string { return "room/" + roomID + "/" }

func roomTimerKey(roomID, name string) string { return roomTimerPrefix(roomID) + name }

const wizardTimerKey = "wizard/confirmation"
