package model

// Status is the outcome of a routed request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ErrorKind tags a failed result with its place in the error taxonomy.
type ErrorKind string

const (
	// KindExtractionSkip is never surfaced; a recognizer that finds nothing
	// simply leaves its key out.
	KindExtractionSkip     ErrorKind = "extraction_skip"
	KindUnclassifiedIntent ErrorKind = "unclassified_intent"
	KindGenerationError    ErrorKind = "generation_error"
	KindExecutionFailure   ErrorKind = "execution_failure"
	KindStoreIOError       ErrorKind = "store_io_error"
)

// NotUnderstood is the fixed message returned for Unknown prompts.
const NotUnderstood = "Sorry, I did not understand that request."

// Result is the execution result reported back to the caller.
type Result struct {
	Status       Status    `json:"status"`
	Message      string    `json:"message"`
	Detail       string    `json:"detail,omitempty"`
	Affected     []string  `json:"affected,omitempty"`
	Calls        int       `json:"calls,omitempty"` // host calls that completed
	Kind         ErrorKind `json:"kind,omitempty"`
	Category     Category  `json:"category"`
	EntryID      int64     `json:"entry_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	JournalError string    `json:"journal_error,omitempty"`
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Succeeded builds a success result.
func Succeeded(msg string, affected ...string) Result {
	return Result{Status: StatusSuccess, Message: msg, Affected: affected}
}

// Failed builds a failure result of the given kind.
func Failed(kind ErrorKind, msg, detail string) Result {
	return Result{Status: StatusFailure, Kind: kind, Message: msg, Detail: detail}
}
