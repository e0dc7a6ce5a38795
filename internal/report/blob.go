package report

import (
	"encoding/json"

	"github.com/ralt/appstream-gen/internal/genresult"
)

// PersistedHint is the serialized form of a models.Hint, with its subject
// already resolved to the identifier the ReportAggregator keys hint
// entries by: a component id, or the raw file basename when no component
// was ever parsed for that file.
type PersistedHint struct {
	ComponentID string            `json:"component_id"`
	Tag         string            `json:"tag"`
	Vars        map[string]string `json:"vars,omitempty"`
}

// EncodeResult serializes the hints collected on a GeneratorResult into the
// blob form the driver persists under the owning package's pkid, ahead of
// any ReportAggregator run.
func EncodeResult(result *genresult.Result) ([]byte, error) {
	hints := make([]PersistedHint, 0, len(result.Hints))
	for _, h := range result.Hints {
		hints = append(hints, PersistedHint{
			ComponentID: h.Subject.ID(),
			Tag:         h.Tag,
			Vars:        h.Vars,
		})
	}
	return json.Marshal(hints)
}

// decodeBlob is the inverse of EncodeResult.
func decodeBlob(blob []byte) ([]PersistedHint, error) {
	var hints []PersistedHint
	if err := json.Unmarshal(blob, &hints); err != nil {
		return nil, err
	}
	return hints, nil
}
