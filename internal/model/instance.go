package model

import "regexp"

// LifecycleState is an EC2 instance lifecycle state.
type LifecycleState string

const (
	StatePending  LifecycleState = "pending"
	StateRunning  LifecycleState = "running"
	StateStopping LifecycleState = "stopping"
	StateStopped  LifecycleState = "stopped"

	// StateTerminated is excluded from every listing and lookup; it only
	// exists so the provider layer can filter it out by name.
	StateTerminated LifecycleState = "terminated"
)

// Instance is the slice of an EC2 instance this service consults. The
// provider owns the record; nothing here is cached between commands.
type Instance struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"` // from the Name tag, may be empty
	State LifecycleState    `json:"state"`
	Tags  map[string]string `json:"tags"`
}

// StateChange is the previous/current state pair the provider reports after
// a start or stop call. It is passed through to the audit sink unchanged.
type StateChange struct {
	Previous LifecycleState `json:"previous"`
	Current  LifecycleState `json:"current"`
}

// instanceIDPattern matches the provider's instance ID shape: "i-" followed
// by 8 or 17 lowercase hex characters.
var instanceIDPattern = regexp.MustCompile(`^i-[0-9a-f]{8}(?:[0-9a-f]{9})?$`)

// IsInstanceID reports whether token has the provider's instance ID shape.
// ID-shaped tokens are trusted as-is and never name-resolved.
func IsInstanceID(token string) bool {
	return instanceIDPattern.MatchString(token)
}
