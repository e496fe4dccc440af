package utils

// ErrorResponse standardizes the error envelope returned by every handler.
func ErrorResponse(message string) map[string]interface{} {
	return map[string]interface{}{
		"Details": message,
	}
}
