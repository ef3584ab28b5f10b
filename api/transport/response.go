package transport

// Status values carried by every envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response. Error holds a human readable message;
// Code is the machine readable classification.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError builds a failure envelope. meta may carry partial results, such as
// the failed suggestion outcome.
func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Meta: meta}
}

// ListMeta accompanies the ranked task list.
type ListMeta struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

type CredentialStatus struct {
	Configured bool `json:"configured"`
}

type PriorityResponse struct {
	Importance string `json:"importance"`
}

type RewriteResponse struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}
