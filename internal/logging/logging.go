// Package logging constructs the single structured logger passed down to
// every component at startup, in place of a package-level singleton.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development one (human
// readable, debug level) when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
