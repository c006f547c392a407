package merge

import (
	"encoding/json"
	"fmt"
)

// ParameterRecord is the wire shape of one template parameter.
type ParameterRecord struct {
	Name  string `json:"ParameterName"`
	Value string `json:"ParameterValue"`
}

// TagRecord is the wire shape of one deployment tag.
type TagRecord struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// EncodeJSON serializes records with the kind's wire field names:
// ParameterName/ParameterValue for parameters, Key/Value for tags.
func (k Kind) EncodeJSON(records []Record) ([]byte, error) {
	var payload any
	switch k {
	case Parameter:
		out := make([]ParameterRecord, len(records))
		for i, r := range records {
			out[i] = ParameterRecord{Name: r.Name, Value: r.Value}
		}
		payload = out
	case Tag:
		out := make([]TagRecord, len(records))
		for i, r := range records {
			out[i] = TagRecord{Key: r.Name, Value: r.Value}
		}
		payload = out
	default:
		return nil, fmt.Errorf("unknown kind %d", k)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s records: %w", k, err)
	}
	return data, nil
}
