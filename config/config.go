package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	crypt "github.com/estafette/estafette-ci-crypt"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultRepository is the upstream repository holding the stable release tags
	DefaultRepository = "https://git.kernel.org/pub/scm/linux/kernel/git/stable/linux.git"
	// DefaultArchiveBaseURL is the root of the v<major>.x archive directories
	DefaultArchiveBaseURL = "https://cdn.kernel.org/pub/linux/kernel"
	// DefaultNotificationWhen sends mail for successful builds only
	DefaultNotificationWhen = "status == 'succeeded'"

	localCloneDir = "git"
)

var (
	// ErrMissingMailField is returned when the mail block lacks one of its required fields
	ErrMissingMailField = errors.New("mail configuration is incomplete")
	// ErrMissingDecryptionKey is returned when a setting holds an encrypted value but no key is configured
	ErrMissingDecryptionKey = errors.New("secret decryption key is not set")
)

// Settings is the operator supplied configuration for a single run
type Settings struct {
	LockVersion    string      `yaml:"lockVersion,omitempty"`
	Jobs           int         `yaml:"jobs,omitempty"`
	Repository     string      `yaml:"repository,omitempty"`
	ArchiveBaseURL string      `yaml:"archiveBaseURL,omitempty"`
	Mail           *MailConfig `yaml:"mail,omitempty"`
}

// MailConfig is used to send a notification after a successful build
type MailConfig struct {
	To       string `yaml:"to"`
	From     string `yaml:"from"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	When     string `yaml:"when,omitempty"`
}

// environment variables override the scalar settings from the file
type environmentOverrides struct {
	LockVersion    string `env:"KERNEL_BUILDER_LOCK_VERSION"`
	Jobs           int    `env:"KERNEL_BUILDER_JOBS"`
	Repository     string `env:"KERNEL_BUILDER_REPOSITORY"`
	ArchiveBaseURL string `env:"KERNEL_BUILDER_ARCHIVE_BASE_URL"`
}

// ReadSettingsFromFile reads the settings file, applies environment overrides and defaults, decrypts secrets and validates the result
func ReadSettingsFromFile(settingsPath, workDir string, secretHelper crypt.SecretHelper) (settings Settings, err error) {

	log.Debug().Msgf("Reading %v file...", settingsPath)

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return settings, fmt.Errorf("reading settings file %v failed: %w", settingsPath, err)
	}

	if err = yaml.UnmarshalStrict(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing settings file %v failed: %w", settingsPath, err)
	}

	if err = settings.applyEnvironmentOverrides(); err != nil {
		return settings, err
	}

	settings.SetDefaults(workDir)

	if err = settings.decryptSecrets(secretHelper); err != nil {
		return settings, err
	}

	if err = settings.Validate(); err != nil {
		return settings, err
	}

	log.Debug().Msgf("Finished reading %v file successfully", settingsPath)

	return settings, nil
}

func (s *Settings) applyEnvironmentOverrides() error {

	overrides := environmentOverrides{
		LockVersion:    s.LockVersion,
		Jobs:           s.Jobs,
		Repository:     s.Repository,
		ArchiveBaseURL: s.ArchiveBaseURL,
	}

	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parsing environment variables failed: %w", err)
	}

	s.LockVersion = overrides.LockVersion
	s.Jobs = overrides.Jobs
	s.Repository = overrides.Repository
	s.ArchiveBaseURL = overrides.ArchiveBaseURL

	return nil
}

// SetDefaults fills in every optional setting that was left empty
func (s *Settings) SetDefaults(workDir string) {

	if s.Jobs <= 0 {
		s.Jobs = DefaultJobs()
	}

	// without a repository url a local clone in the working root is used if present
	if s.Repository == "" {
		if info, err := os.Stat(filepath.Join(workDir, localCloneDir)); err != nil || !info.IsDir() {
			s.Repository = DefaultRepository
		}
	}

	if s.ArchiveBaseURL == "" {
		s.ArchiveBaseURL = DefaultArchiveBaseURL
	}
	s.ArchiveBaseURL = strings.TrimSuffix(s.ArchiveBaseURL, "/")

	if s.Mail != nil && s.Mail.When == "" {
		s.Mail.When = DefaultNotificationWhen
	}
}

// DefaultJobs leaves one processing unit free for the rest of the system
func DefaultJobs() int {
	jobs := runtime.NumCPU() - 1
	if jobs < 1 {
		return 1
	}
	return jobs
}

func (s *Settings) decryptSecrets(secretHelper crypt.SecretHelper) (err error) {

	if s.Mail == nil || !strings.Contains(s.Mail.Password, "estafette.secret(") {
		return nil
	}

	if secretHelper == nil {
		return fmt.Errorf("%w: mail password is encrypted", ErrMissingDecryptionKey)
	}

	s.Mail.Password, _, err = secretHelper.DecryptEnvelope(s.Mail.Password, "")
	if err != nil {
		return fmt.Errorf("decrypting mail password failed: %w", err)
	}

	return nil
}

// Validate checks the settings for values that cannot be defaulted
func (s *Settings) Validate() error {

	if s.Jobs < 1 {
		return fmt.Errorf("jobs should be larger than zero, got %v", s.Jobs)
	}

	if s.Mail == nil {
		return nil
	}

	missing := []string{}
	if s.Mail.To == "" {
		missing = append(missing, "to")
	}
	if s.Mail.From == "" {
		missing = append(missing, "from")
	}
	if s.Mail.Server == "" {
		missing = append(missing, "server")
	}
	if s.Mail.Port <= 0 {
		missing = append(missing, "port")
	}
	if s.Mail.User == "" {
		missing = append(missing, "user")
	}
	if s.Mail.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrMissingMailField, strings.Join(missing, ", "))
	}

	return nil
}
