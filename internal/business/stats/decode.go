package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// ErrInvalidArgument signals that the caller did not hand over a list of visitors.
var ErrInvalidArgument = errors.New("invalid argument")

// DecodeRecords parses a JSON array of visitors. Anything other than an array,
// including null, fails before any aggregation happens.
func DecodeRecords(raw []byte) ([]model.Visitor, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of visitors", ErrInvalidArgument)
	}
	var visitors []model.Visitor
	if err := json.Unmarshal(trimmed, &visitors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if visitors == nil {
		visitors = []model.Visitor{}
	}
	return visitors, nil
}
