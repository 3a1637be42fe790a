package logging

import "go.uber.org/zap"

// NewLogger builds the root logger: human-readable in development,
// JSON in production.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
