package dispatch

import "github.com/Cyclone1070/devassist/internal/capability"

// capabilityLookup resolves capability names.
type capabilityLookup interface {
	// Lookup returns the capability registered under name.
	Lookup(name string) (capability.Capability, bool)
}
