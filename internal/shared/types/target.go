package types

import "github.com/google/uuid"

// TargetID identifies the texture surface a media session renders into.
type TargetID uuid.UUID

// NilTarget is the zero target. Sessions bound to it are never indexed.
var NilTarget TargetID

// NewTargetID returns a random target identifier
func NewTargetID() TargetID {
	return TargetID(uuid.New())
}

// ParseTargetID parses the canonical UUID form of a target
func ParseTargetID(s string) (TargetID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilTarget, err
	}
	return TargetID(u), nil
}

// IsNil reports whether t is the zero target
func (t TargetID) IsNil() bool {
	return t == NilTarget
}

func (t TargetID) String() string {
	return uuid.UUID(t).String()
}
