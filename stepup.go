// Package stepup provides the email code verification service: code
// issuance and redemption for user and admin realms, trusted-device
// bypass, a relay-first email chain and login notification emails.
package stepup

import (
	"github.com/tech-arch1tect/stepup/app"
	"github.com/tech-arch1tect/stepup/config"
)

type App = app.App

type Builder = app.Builder

// New starts a builder with the default stack assembly.
func New() *Builder {
	return app.NewApp()
}

// NewWithConfig is New with an explicit configuration, mostly for
// embedding and tests.
func NewWithConfig(cfg *config.Config) *Builder {
	return app.NewApp().WithConfig(cfg)
}
