package response

// Response is the wire format consumed by the back-office client: an echo of
// the status code, a human-readable message, and the entity payload.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Entity  interface{} `json:"entity,omitempty"`
}

// Success wraps a fetched or mutated entity.
func Success(code int, message string, entity interface{}) Response {
	return Response{
		Code:    code,
		Message: message,
		Entity:  entity,
	}
}

// Error wraps a failure message.
func Error(code int, message string) Response {
	return Response{
		Code:    code,
		Message: message,
	}
}
