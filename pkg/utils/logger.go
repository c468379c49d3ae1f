package utils

import "go.uber.org/zap"

// NewLogger builds the process-wide zap logger. Debug selects the development
// preset (console encoder at debug level); otherwise the production JSON
// preset at info level is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
