package hive

import "time"

// Event represents a discovery diagnostics event. The event stream is
// optional and never affects the success path of a discovery run.
// ------------------------------------------------------------------
type Event any

type DiscoveryStarted struct {
	Kind   string // "proxies" or "voters"
	Target string
}

type PassCompleted struct {
	Pass       string
	Candidates int
	Matches    int
}

type PassFailed struct {
	Pass string
	Err  error
}

type DiscoveryDone struct {
	Kind         string
	Target       string
	Records      int
	FailedPasses int
	Duration     time.Duration
}

// Subscriber handles event subscriptions.
type Subscriber struct {
	done            chan struct{}
	startedHandler  func(DiscoveryStarted)
	passHandler     func(PassCompleted)
	passFailHandler func(PassFailed)
	doneHandler     func(DiscoveryDone)
}

// OnDiscoveryStarted sets the handler for DiscoveryStarted events
func OnDiscoveryStarted(fn func(DiscoveryStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.startedHandler = fn }
}

// OnPassCompleted sets the handler for PassCompleted events
func OnPassCompleted(fn func(PassCompleted)) func(*Subscriber) {
	return func(s *Subscriber) { s.passHandler = fn }
}

// OnPassFailed sets the handler for PassFailed events
func OnPassFailed(fn func(PassFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.passFailHandler = fn }
}

// OnDiscoveryDone sets the handler for DiscoveryDone events
func OnDiscoveryDone(fn func(DiscoveryDone)) func(*Subscriber) {
	return func(s *Subscriber) { s.doneHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the
// dispatch loop. It returns a closer function that waits for all events to
// be processed; use `defer closer()` right after construction.
//
// The subscriber processes events until the events channel closes, then the
// closer confirms all processing is complete.
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:            make(chan struct{}),
		startedHandler:  func(DiscoveryStarted) {}, // nop by default
		passHandler:     func(PassCompleted) {},    // nop by default
		passFailHandler: func(PassFailed) {},       // nop by default
		doneHandler:     func(DiscoveryDone) {},    // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case DiscoveryStarted:
				s.startedHandler(e)
			case PassCompleted:
				s.passHandler(e)
			case PassFailed:
				s.passFailHandler(e)
			case DiscoveryDone:
				s.doneHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}
