package exitcodes

// Exit codes for the smartfile engine
// These codes form the operational contract with wrapping front ends
const (
	Success         = 0 // Operation completed with success=true
	OperationFailed = 1 // Operation completed with success=false
	InvalidConfig   = 2 // Configuration file invalid
	InvalidCommand  = 3 // Command failed structural validation
	RuntimeError    = 4 // Runtime error during execution
)
