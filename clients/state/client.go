package state

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// ConfigFile is the saved kernel configuration reused across versions
	ConfigFile = "config"
	// MarkerFile holds the last successfully built version on its first line
	MarkerFile = "built_version"
	// LockFile optionally holds a version prefix to pin builds to
	LockFile = "lockfile"
)

var (
	// ErrBuiltVersionUnknown is returned when neither the marker nor the saved configuration yields a version
	ErrBuiltVersionUnknown = errors.New("built version cannot be determined")

	configBannerRegex = regexp.MustCompile(`^# Linux/x86 (\S+) Kernel Configuration\s*$`)
)

// Client reads and writes the persisted build state in the working root
//
//go:generate mockgen -package=state -destination ./mock.go -source=client.go
type Client interface {
	GetBuiltVersion() (version string, err error)
	SetBuiltVersion(version string) (err error)
	GetLockVersion() (lockVersion string, err error)
	RestoreConfig(sourceDir string) (err error)
	PersistConfig(sourceDir string) (err error)
}

// NewClient returns a new state.Client operating on files in workDir
func NewClient(workDir string) (Client, error) {
	return &client{
		workDir: workDir,
	}, nil
}

type client struct {
	workDir string
}

func (c *client) GetBuiltVersion() (version string, err error) {

	markerPath := filepath.Join(c.workDir, MarkerFile)
	version, err = readFirstLine(markerPath)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if version != "" {
		log.Debug().Msgf("Read built version %v from %v", version, markerPath)
		return version, nil
	}

	configPath := filepath.Join(c.workDir, ConfigFile)
	version, err = readConfigBannerVersion(configPath)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if version != "" {
		log.Debug().Msgf("Read built version %v from banner in %v", version, configPath)
		return version, nil
	}

	return "", fmt.Errorf("%w: no version in %v and no version banner in %v", ErrBuiltVersionUnknown, markerPath, configPath)
}

func (c *client) SetBuiltVersion(version string) (err error) {
	return writeFileAtomic(filepath.Join(c.workDir, MarkerFile), strings.NewReader(version+"\n"))
}

func (c *client) GetLockVersion() (lockVersion string, err error) {
	lockVersion, err = readFirstLine(filepath.Join(c.workDir, LockFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	return lockVersion, err
}

func (c *client) RestoreConfig(sourceDir string) (err error) {

	src, err := os.Open(filepath.Join(c.workDir, ConfigFile))
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(sourceDir, ".config"))
	if err != nil {
		return err
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}

func (c *client) PersistConfig(sourceDir string) (err error) {

	src, err := os.Open(filepath.Join(sourceDir, ".config"))
	if err != nil {
		return err
	}
	defer src.Close()

	return writeFileAtomic(filepath.Join(c.workDir, ConfigFile), src)
}

func readFirstLine(path string) (string, error) {

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func readConfigBannerVersion(path string) (string, error) {

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if matches := configBannerRegex.FindStringSubmatch(scanner.Text()); matches != nil {
			return matches[1], nil
		}
	}

	return "", scanner.Err()
}

func writeFileAtomic(path string, r io.Reader) error {

	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err = io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpFile.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), path)
}
