package service

// Service is the lifecycle interface for infrastructure around the control loop:
// motor links, telemetry servers, audio, the terminal
//
// Lifecycle:
//  1. Construction with configuration
//  2. Init - acquire resources (open ports, create streams)
//  3. Start - launch background goroutines
//  4. [runtime operation]
//  5. Stop - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	Dependencies() []string

	Init() error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent
	Stop() error
}
