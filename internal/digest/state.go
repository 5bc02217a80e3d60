package digest

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/jobtracker/internal/record"
)

// Decode parses a stored digest record. A record without a generation date
// or without exactly Size entries is rejected as corrupt.
func Decode(data []byte) (*record.DigestState, error) {
	var d *record.DigestState
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	if d == nil {
		return nil, nil
	}
	if d.GeneratedOn == "" || d.Entries == nil {
		return nil, fmt.Errorf("decode digest: missing entries or generatedOn")
	}
	if len(d.Entries) != Size {
		return nil, fmt.Errorf("decode digest: got %d entries, want %d", len(d.Entries), Size)
	}
	return d, nil
}
