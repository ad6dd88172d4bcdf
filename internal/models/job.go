package models

import (
	"encoding/json"
	"time"

	"github.com/captcha-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// Job represents one CAPTCHA or typing task.
// CompletedAt is set if and only if Status is completed.
type Job struct {
	ID           string          `json:"id"`
	PlatformID   *string         `json:"platformId,omitempty"`
	ExternalID   *string         `json:"externalId,omitempty"`
	Type         types.JobType   `json:"type"`
	SubType      *string         `json:"subType,omitempty"`
	Status       types.JobStatus `json:"status"`
	Reward       decimal.Decimal `json:"reward"`
	Data         JobData         `json:"data"`
	Result       *string         `json:"result"`
	ErrorMessage *string         `json:"errorMessage,omitempty"`
	RetryCount   int             `json:"retryCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// JobData is the task payload: an image reference or literal text, with an
// optional target format for typing jobs. Keys the solver does not read are
// kept in Extra and written back unchanged.
type JobData struct {
	ImageURL string                     `json:"imageUrl,omitempty"`
	Text     string                     `json:"text,omitempty"`
	Format   string                     `json:"format,omitempty"`
	Extra    map[string]json.RawMessage `json:"-"`
}

type jobDataFields struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Text     string `json:"text,omitempty"`
	Format   string `json:"format,omitempty"`
}

// UnmarshalJSON decodes the known keys and stashes the rest in Extra
func (d *JobData) UnmarshalJSON(b []byte) error {
	var known jobDataFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	delete(all, "imageUrl")
	delete(all, "text")
	delete(all, "format")

	d.ImageURL, d.Text, d.Format = known.ImageURL, known.Text, known.Format
	d.Extra = nil
	if len(all) > 0 {
		d.Extra = all
	}
	return nil
}

// MarshalJSON merges Extra back alongside the known keys
func (d JobData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.ImageURL != "" {
		out["imageUrl"] = d.ImageURL
	}
	if d.Text != "" {
		out["text"] = d.Text
	}
	if d.Format != "" {
		out["format"] = d.Format
	}
	return json.Marshal(out)
}

// HasImage reports whether the payload references an image
func (d JobData) HasImage() bool {
	return d.ImageURL != ""
}

// HasText reports whether the payload carries literal text
func (d JobData) HasText() bool {
	return d.Text != ""
}

// JobPatch carries the fields the lifecycle updater may change
type JobPatch struct {
	Status       *types.JobStatus
	Result       *string
	ErrorMessage *string
	RetryCount   *int
	CompletedAt  *time.Time
	ClearResult  bool
}

// Clone returns a deep copy of the job
func (j *Job) Clone() *Job {
	c := *j
	c.PlatformID = cloneString(j.PlatformID)
	c.ExternalID = cloneString(j.ExternalID)
	c.SubType = cloneString(j.SubType)
	c.Result = cloneString(j.Result)
	c.ErrorMessage = cloneString(j.ErrorMessage)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Data.Extra != nil {
		c.Data.Extra = make(map[string]json.RawMessage, len(j.Data.Extra))
		for k, v := range j.Data.Extra {
			c.Data.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
