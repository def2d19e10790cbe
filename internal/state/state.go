// Package state holds the monitor's mutable state: the last update marker,
// the cached outage list and the committed power status. Each piece is
// guarded by its own lock so a status reader never waits on an outage list
// replacement.
package state

// ApplicationState owns the three pieces of shared state. It is created once
// and passed explicitly to whatever needs it.
type ApplicationState struct {
	Tracker *UpdateTracker
	Outages *OutageStore
	Status  *StatusMachine
}

// NewApplicationState returns the cold-start state: marker 0, no outages,
// status ONLINE.
func NewApplicationState() *ApplicationState {
	return &ApplicationState{
		Tracker: NewUpdateTracker(),
		Outages: NewOutageStore(),
		Status:  NewStatusMachine(),
	}
}
