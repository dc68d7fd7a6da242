package results

// OperationResult is the common return shape for service operations.
// Success and Failure carry event payloads; Error carries validation
// errors that never become events.
type OperationResult struct {
	Success any
	Failure any
	Error   error
}

// SuccessResult wraps a success payload.
func SuccessResult(payload any) OperationResult {
	return OperationResult{Success: payload}
}

// FailureResult wraps a failure payload.
func FailureResult(payload any) OperationResult {
	return OperationResult{Failure: payload}
}
