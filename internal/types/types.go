// Package types provides common type definitions for the job dashboard.
package types

// JobType represents the kind of work a job asks for
type JobType string

const (
	// JobTypeCaptcha represents a CAPTCHA solving job
	JobTypeCaptcha JobType = "captcha"
	// JobTypeTyping represents a data-entry (transcription or formatting) job
	JobTypeTyping JobType = "typing"
)

// Valid reports whether t is a known job type
func (t JobType) Valid() bool {
	return t == JobTypeCaptcha || t == JobTypeTyping
}

// JobStatus represents where a job is in its lifecycle
type JobStatus string

const (
	// JobStatusQueued represents a job waiting to be processed
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing represents a job with an external solve in flight
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted represents a successfully solved job
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed represents a job whose last solve attempt failed
	JobStatusFailed JobStatus = "failed"
)

// Valid reports whether s is a known job status
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// PlatformStatus represents the connection state of a configured vendor
type PlatformStatus string

const (
	// PlatformConnected represents a platform accepted for use
	PlatformConnected PlatformStatus = "connected"
	// PlatformDisconnected represents a platform switched off by the user
	PlatformDisconnected PlatformStatus = "disconnected"
	// PlatformError represents a platform with a configuration problem
	PlatformError PlatformStatus = "error"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	// TransactionEarning is created when a job completes
	TransactionEarning TransactionType = "earning"
	// TransactionWithdrawal is created from a payout request
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus represents settlement state of a ledger entry
type TransactionStatus string

const (
	// TransactionPending represents an entry awaiting settlement
	TransactionPending TransactionStatus = "pending"
	// TransactionCompleted represents a settled entry
	TransactionCompleted TransactionStatus = "completed"
	// TransactionFailed represents an entry that could not be settled
	TransactionFailed TransactionStatus = "failed"
)

// PaymentMethod represents a payout channel for withdrawals
type PaymentMethod string

const (
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentBitcoin  PaymentMethod = "bitcoin"
	PaymentEthereum PaymentMethod = "ethereum"
	PaymentUSDT     PaymentMethod = "usdt"
)

// ActivityStatus represents the severity of an activity log entry
type ActivityStatus string

const (
	ActivitySuccess ActivityStatus = "success"
	ActivityError   ActivityStatus = "error"
	ActivityInfo    ActivityStatus = "info"
)

// Well-known settings keys
const (
	// SettingAutoProcess toggles client-driven automatic processing
	SettingAutoProcess = "auto_process"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
