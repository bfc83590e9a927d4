package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeID reads an opaque plan id that a server may send either as a JSON
// string or as a number.
func DecodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("plan id must be a string or number: %s", raw)
	}
	return n.String(), nil
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	type alias Plan
	aux := struct {
		*alias
		ID json.RawMessage `json:"id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := DecodeID(aux.ID)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	type alias Summary
	aux := struct {
		*alias
		ID json.RawMessage `json:"id"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := DecodeID(aux.ID)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}
