package state

import (
	"sync"
	"time"
)

// PowerStatus is the committed power state at the monitored location
type PowerStatus int

const (
	// Online is assumed at startup until an outage is observed.
	Online PowerStatus = iota
	Offline
)

func (s PowerStatus) String() string {
	switch s {
	case Online:
		return "ONLINE"
	case Offline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// IntentKind identifies which edge produced a notification
type IntentKind string

const (
	IntentOutageStarted IntentKind = "outage_started"
	IntentPowerRestored IntentKind = "power_restored"
)

const (
	OutageStartedMessage = "POWER OUTAGE affecting the location."
	PowerRestoredMessage = "Power is ONLINE at location."
)

// NotificationIntent is emitted once per status change
type NotificationIntent struct {
	Kind    IntentKind
	Status  PowerStatus
	Message string
}

// StatusMachine holds the committed PowerStatus and turns readings into
// edge-triggered notification intents.
type StatusMachine struct {
	mu      sync.Mutex
	current PowerStatus
	since   time.Time
}

// NewStatusMachine starts in the Online state.
func NewStatusMachine() *StatusMachine {
	return &StatusMachine{current: Online, since: time.Now()}
}

// Transition commits the status implied by isNowOnline and returns an
// intent only when that status differs from the committed one. The read,
// the decision and the commit happen under one lock.
//
//	ONLINE  + online  -> ONLINE   none
//	ONLINE  + offline -> OFFLINE  outage started
//	OFFLINE + online  -> ONLINE   power restored
//	OFFLINE + offline -> OFFLINE  none
func (m *StatusMachine) Transition(isNowOnline bool) *NotificationIntent {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.current == Online && !isNowOnline:
		m.current = Offline
		m.since = time.Now()
		return &NotificationIntent{Kind: IntentOutageStarted, Status: Offline, Message: OutageStartedMessage}
	case m.current == Offline && isNowOnline:
		m.current = Online
		m.since = time.Now()
		return &NotificationIntent{Kind: IntentPowerRestored, Status: Online, Message: PowerRestoredMessage}
	default:
		return nil
	}
}

// Current returns the committed status.
func (m *StatusMachine) Current() PowerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Since returns when the committed status last changed (or process start).
func (m *StatusMachine) Since() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.since
}
