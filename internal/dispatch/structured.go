package dispatch

import (
	"github.com/Cyclone1070/devassist/internal/capability"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
)

// ReadStructured returns the first native tool call of resp. Only one call is
// honored per turn. A missing response, an empty call list, or a first call
// that is malformed or has no name all report false; later calls are never
// promoted in its place.
func ReadStructured(resp *provider.GenerateResponse) (RawCall, bool) {
	if resp == nil || len(resp.Content.ToolCalls) == 0 {
		return RawCall{}, false
	}
	tc := resp.Content.ToolCalls[0]
	if tc.Name == "" || tc.Malformed {
		return RawCall{}, false
	}
	return RawCall{
		ID:      tc.ID,
		Name:    tc.Name,
		Payload: capability.MappingPayload(tc.Args),
		Source:  SourceStructured,
	}, true
}
