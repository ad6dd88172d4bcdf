package models

import (
	"encoding/json"
	"time"
)

// Setting is a generic key/value entry; Value is opaque JSON
type Setting struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
