package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/testutils"
)

func TestBuilder_Build(t *testing.T) {
	application, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		Build()
	require.NoError(t, err)
	require.NotNil(t, application)

	assert.NotNil(t, application.Config())
	assert.NotNil(t, application.Logger())
	assert.NotNil(t, application.DB())

	// Stack tables were migrated.
	assert.True(t, application.DB().Migrator().HasTable("verification_codes"))
	assert.True(t, application.DB().Migrator().HasTable("trusted_devices"))
	assert.True(t, application.DB().Migrator().HasTable("notifications"))
}

func TestBuilder_NilConfigRejected(t *testing.T) {
	_, err := NewApp().WithConfig(nil).Build()
	assert.Error(t, err)
}

func TestBuilder_BadDatabaseDriver(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.Database.Driver = "oracle"

	_, err := NewApp().WithConfig(cfg).Build()
	assert.Error(t, err)
}
