package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleID is a user or record identifier that decodes from either a JSON
// number or a numeric JSON string. Browser clients send both.
type FlexibleID uint64

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identifier %q", raw)
	}
	*id = FlexibleID(v)
	return nil
}

func (id FlexibleID) Uint64() uint64 {
	return uint64(id)
}
