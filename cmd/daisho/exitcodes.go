package main

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (missing or invalid config.yml)
	ExitDataError       = 3 // Data error (invalid record input in exec)
	ExitConnectionError = 4 // Store could not be opened
)
