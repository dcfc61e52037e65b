package device

import "fmt"

// FailureKind classifies what went wrong with a device request.
type FailureKind string

const (
	// FailureNetwork means the request never reached the device or never
	// returned.
	FailureNetwork FailureKind = "network"
	// FailureServer means the device answered with a non-success status.
	FailureServer FailureKind = "server"
	// FailureProtocol means the device answered with a malformed or
	// unexpected body.
	FailureProtocol FailureKind = "protocol"
)

// Failure is the single error type every fetcher returns. Callers get a
// human-readable message either way; the kind distinguishes transport
// problems from device-reported errors.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func networkFailure(err error) *Failure {
	return &Failure{Kind: FailureNetwork, Message: fmt.Sprintf("device unreachable: %v", err)}
}

func serverFailure(status int, message string) *Failure {
	if message == "" {
		message = fmt.Sprintf("server returned status %d", status)
	}
	return &Failure{Kind: FailureServer, Status: status, Message: message}
}

func protocolFailure(err error) *Failure {
	return &Failure{Kind: FailureProtocol, Message: fmt.Sprintf("unexpected device response: %v", err)}
}
