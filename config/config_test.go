package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	crypt "github.com/estafette/estafette-ci-crypt"
	"github.com/stretchr/testify/assert"
)

const testDecryptionKey = "SazbwMf3NZxVVbBqQHebPcXCqrVn3DDp"

func TestReadSettingsFromFile(t *testing.T) {

	t.Run("ReturnsSettingsFromFile", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, `
lockVersion: "5.4"
jobs: 7
repository: https://example.com/linux.git
archiveBaseURL: https://mirror.example.com/kernel/
mail:
  to: ops@example.com
  from: builder@example.com
  server: smtp.example.com
  port: 587
  user: builder
  password: plain-password
`)

		// act
		settings, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.Nil(t, err)
		assert.Equal(t, "5.4", settings.LockVersion)
		assert.Equal(t, 7, settings.Jobs)
		assert.Equal(t, "https://example.com/linux.git", settings.Repository)
		assert.Equal(t, "https://mirror.example.com/kernel", settings.ArchiveBaseURL)
		if assert.NotNil(t, settings.Mail) {
			assert.Equal(t, "ops@example.com", settings.Mail.To)
			assert.Equal(t, "builder@example.com", settings.Mail.From)
			assert.Equal(t, "smtp.example.com", settings.Mail.Server)
			assert.Equal(t, 587, settings.Mail.Port)
			assert.Equal(t, "builder", settings.Mail.User)
			assert.Equal(t, "plain-password", settings.Mail.Password)
			assert.Equal(t, DefaultNotificationWhen, settings.Mail.When)
		}
	})

	t.Run("AppliesDefaultsForEmptyFile", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, "")

		// act
		settings, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.Nil(t, err)
		assert.Equal(t, "", settings.LockVersion)
		assert.Equal(t, DefaultJobs(), settings.Jobs)
		assert.Equal(t, DefaultRepository, settings.Repository)
		assert.Equal(t, DefaultArchiveBaseURL, settings.ArchiveBaseURL)
		assert.Nil(t, settings.Mail)
	})

	t.Run("LeavesRepositoryEmptyWhenLocalCloneExists", func(t *testing.T) {

		workDir := t.TempDir()
		_ = os.Mkdir(filepath.Join(workDir, "git"), 0755)
		settingsPath := writeSettings(t, workDir, "jobs: 2\n")

		// act
		settings, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.Nil(t, err)
		assert.Equal(t, "", settings.Repository)
	})

	t.Run("OverridesSettingsWithEnvironmentVariables", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, "lockVersion: \"5.4\"\njobs: 7\n")
		t.Setenv("KERNEL_BUILDER_LOCK_VERSION", "5.10")
		t.Setenv("KERNEL_BUILDER_JOBS", "12")

		// act
		settings, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.Nil(t, err)
		assert.Equal(t, "5.10", settings.LockVersion)
		assert.Equal(t, 12, settings.Jobs)
	})

	t.Run("DecryptsEncryptedMailPassword", func(t *testing.T) {

		secretHelper := crypt.NewSecretHelper(testDecryptionKey, false)
		envelope, err := secretHelper.EncryptEnvelope("s3cr3t-password", crypt.DefaultPipelineAllowList)
		assert.Nil(t, err)

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, `
mail:
  to: ops@example.com
  from: builder@example.com
  server: smtp.example.com
  port: 587
  user: builder
  password: `+envelope+`
`)

		// act
		settings, err := ReadSettingsFromFile(settingsPath, workDir, secretHelper)

		assert.Nil(t, err)
		assert.Equal(t, "s3cr3t-password", settings.Mail.Password)
	})

	t.Run("ReturnsErrorWhenEncryptedPasswordHasNoKey", func(t *testing.T) {

		envelope, _ := crypt.NewSecretHelper(testDecryptionKey, false).EncryptEnvelope("s3cr3t-password", crypt.DefaultPipelineAllowList)
		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, `
mail:
  to: ops@example.com
  from: builder@example.com
  server: smtp.example.com
  port: 587
  user: builder
  password: `+envelope+`
`)

		// act
		_, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.True(t, errors.Is(err, ErrMissingDecryptionKey))
	})

	t.Run("ReturnsErrorWhenMailBlockIsIncomplete", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, `
mail:
  to: ops@example.com
  server: smtp.example.com
`)

		// act
		_, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.True(t, errors.Is(err, ErrMissingMailField))
		assert.Contains(t, err.Error(), "from")
		assert.Contains(t, err.Error(), "port")
	})

	t.Run("ReturnsErrorWhenFileDoesNotExist", func(t *testing.T) {

		workDir := t.TempDir()

		// act
		_, err := ReadSettingsFromFile(filepath.Join(workDir, "settings.yaml"), workDir, nil)

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorWhenFileIsMalformed", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, "jobs: [1, 2\n")

		// act
		_, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorForUnknownKeys", func(t *testing.T) {

		workDir := t.TempDir()
		settingsPath := writeSettings(t, workDir, "lock_version: \"5.4\"\n")

		// act
		_, err := ReadSettingsFromFile(settingsPath, workDir, nil)

		assert.NotNil(t, err)
	})
}

func TestDefaultJobs(t *testing.T) {

	t.Run("ReturnsAtLeastOne", func(t *testing.T) {

		// act
		jobs := DefaultJobs()

		assert.GreaterOrEqual(t, jobs, 1)
	})
}

func writeSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
