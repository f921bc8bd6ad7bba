package catalog

import "fmt"

// Capability is the ordered permission level a user holds over a
// collection and, transitively, its containers and items. Owner is
// implicit for the collection's owner and can never come from a grant.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityRead
	CapabilityWrite
	CapabilityOwner
)

func (c Capability) Allows(required Capability) bool {
	return c >= required
}

func (c Capability) String() string {
	switch c {
	case CapabilityRead:
		return "read"
	case CapabilityWrite:
		return "write"
	case CapabilityOwner:
		return "owner"
	default:
		return "none"
	}
}

// ParseCapability accepts the grantable subset plus "none". "owner" is
// rejected on purpose: ownership is never expressed as a grant.
func ParseCapability(s string) (Capability, error) {
	switch s {
	case "none":
		return CapabilityNone, nil
	case "read":
		return CapabilityRead, nil
	case "write":
		return CapabilityWrite, nil
	}
	return CapabilityNone, fmt.Errorf("unknown capability %q", s)
}
