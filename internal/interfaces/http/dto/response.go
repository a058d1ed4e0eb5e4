package dto

// Error flags of the response envelope
const (
	FlagOK   = "0"
	FlagFail = "1"
)

// Response is the {error, message?, data?} envelope every route answers with
type Response struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Error: FlagOK,
		Data:  data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) Response {
	return Response{
		Error:   FlagFail,
		Message: message,
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request id
func NewErrorResponseWithRequestID(message, requestID string) Response {
	resp := NewErrorResponse(message)
	resp.RequestID = requestID
	return resp
}
