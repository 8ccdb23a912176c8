package entity

// ValidationError marks input rejected at the service boundary, mapped to a
// 400 by the transport layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
