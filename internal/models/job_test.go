package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobData_KeepsUnknownKeys(t *testing.T) {
	raw := []byte(`{"text":"2+2=?","difficulty":3,"hint":{"lang":"en"}}`)

	var d JobData
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, "2+2=?", d.Text)
	assert.True(t, d.HasText())
	assert.False(t, d.HasImage())
	require.Len(t, d.Extra, 2)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestJobData_EmptyObject(t *testing.T) {
	var d JobData
	require.NoError(t, json.Unmarshal([]byte(`{}`), &d))
	assert.Nil(t, d.Extra)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestJob_CloneIsDeep(t *testing.T) {
	result := "4"
	j := &Job{ID: "j1", Result: &result, Data: JobData{Extra: map[string]json.RawMessage{"k": json.RawMessage(`1`)}}}

	c := j.Clone()
	*c.Result = "5"
	c.Data.Extra["k"] = json.RawMessage(`2`)

	assert.Equal(t, "4", *j.Result)
	assert.Equal(t, json.RawMessage(`1`), j.Data.Extra["k"])
}
