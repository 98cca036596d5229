package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/estafette/estafette-kernel-builder/clients/archive"
	"github.com/estafette/estafette-kernel-builder/clients/kbuild"
	"github.com/estafette/estafette-kernel-builder/clients/obfuscation"
	"github.com/estafette/estafette-kernel-builder/clients/state"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RunLogFile receives the combined output of the package build, overwritten on every build
const RunLogFile = "run_build.log"

// Result describes the outcome of building a single version
type Result struct {
	Version    string
	Status     contracts.LogStatus
	BuildLog   contracts.BuildLog
	RunLogPath string
}

// Service downloads, configures and packages a kernel release
//
//go:generate mockgen -package=build -destination ./mock.go -source=service.go
type Service interface {
	Build(ctx context.Context, version string, jobs int) (result Result, err error)
}

// NewService returns a new build.Service
func NewService(archiveClient archive.Client, kbuildClient kbuild.Client, stateClient state.Client, obfuscationClient obfuscation.Client, workDir, archiveBaseURL string) (Service, error) {
	return &service{
		archiveClient:     archiveClient,
		kbuildClient:      kbuildClient,
		stateClient:       stateClient,
		obfuscationClient: obfuscationClient,
		workDir:           workDir,
		archiveBaseURL:    archiveBaseURL,
	}, nil
}

type service struct {
	archiveClient     archive.Client
	kbuildClient      kbuild.Client
	stateClient       state.Client
	obfuscationClient obfuscation.Client
	workDir           string
	archiveBaseURL    string
}

func (s *service) Build(ctx context.Context, version string, jobs int) (result Result, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "BuildKernel")
	defer span.Finish()
	span.SetTag("version", version)

	result = Result{
		Version:    version,
		Status:     contracts.LogStatusRunning,
		RunLogPath: filepath.Join(s.workDir, RunLogFile),
	}

	archivePath := filepath.Join(s.workDir, ArchiveName(version))
	sourceDir := filepath.Join(s.workDir, SourceDirName(version))

	archiveExists, err := pathExists(archivePath)
	if err != nil {
		return s.fail(ctx, result, err)
	}
	err = s.runStep(ctx, &result, "download", archiveExists, func(ctx context.Context, step *contracts.BuildLogStep) error {
		url := ArchiveURL(s.archiveBaseURL, version)
		s.appendLogLine(step, "stdout", fmt.Sprintf("Downloading %v", url))
		return s.archiveClient.Download(ctx, url, archivePath)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	sourceDirExists, err := pathExists(sourceDir)
	if err != nil {
		return s.fail(ctx, result, err)
	}
	err = s.runStep(ctx, &result, "extract", sourceDirExists, func(ctx context.Context, step *contracts.BuildLogStep) error {
		return s.archiveClient.Extract(ctx, archivePath, s.workDir)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	err = s.runStep(ctx, &result, "restore-config", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		return s.stateClient.RestoreConfig(sourceDir)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	err = s.runStep(ctx, &result, "oldconfig", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		return s.kbuildClient.OldConfig(ctx, sourceDir)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	var output string
	err = s.runStep(ctx, &result, "bindeb-pkg", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		var exitCode int
		var buildErr error
		output, exitCode, buildErr = s.kbuildClient.BuildPackage(ctx, sourceDir, jobs)
		step.ExitCode = int64(exitCode)
		if buildErr != nil {
			return buildErr
		}
		if writeErr := os.WriteFile(result.RunLogPath, []byte(output), 0644); writeErr != nil {
			return writeErr
		}
		s.appendLogLine(step, "stdout", fmt.Sprintf("Wrote %v bytes of build output to %v", len(output), result.RunLogPath))
		return nil
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	err = s.runStep(ctx, &result, "classify", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		result.Status = ClassifyBuildOutput(output)
		step.Status = result.Status
		if result.Status == contracts.LogStatusFailed {
			s.appendLogLine(step, "stderr", fmt.Sprintf("Build output contains errors, see %v", result.RunLogPath))
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	if result.Status != contracts.LogStatusSucceeded {
		// keep artifacts, configuration and marker for inspection and a retry
		_ = s.runStep(ctx, &result, "persist", true, nil)
		_ = s.runStep(ctx, &result, "cleanup", true, nil)
		span.SetTag("status", string(result.Status))
		return result, nil
	}

	err = s.runStep(ctx, &result, "persist", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		if err := s.stateClient.PersistConfig(sourceDir); err != nil {
			return err
		}
		return s.stateClient.SetBuiltVersion(version)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	err = s.runStep(ctx, &result, "cleanup", false, func(ctx context.Context, step *contracts.BuildLogStep) error {
		return s.archiveClient.Remove(archivePath, sourceDir)
	})
	if err != nil {
		return s.fail(ctx, result, err)
	}

	span.SetTag("status", string(result.Status))

	return result, nil
}

func (s *service) runStep(ctx context.Context, result *Result, name string, skip bool, run func(ctx context.Context, step *contracts.BuildLogStep) error) (err error) {

	step := &contracts.BuildLogStep{
		Step:   name,
		Status: contracts.LogStatusRunning,
	}
	result.BuildLog.Steps = append(result.BuildLog.Steps, step)

	if skip {
		log.Info().Msgf("[%v] Skipping step", name)
		step.Status = contracts.LogStatusSkipped
		return nil
	}

	log.Info().Msgf("[%v] Starting step...", name)

	start := time.Now()
	err = run(ctx, step)
	step.Duration = time.Since(start)

	if err != nil {
		step.Status = contracts.LogStatusFailed
		if ctx.Err() != nil {
			step.Status = contracts.LogStatusCanceled
		}
		s.appendLogLine(step, "stderr", err.Error())
		log.Warn().Msgf("[%v] Step %v after %.0f seconds", name, strings.ToLower(string(step.Status)), step.Duration.Seconds())
		return errors.Wrapf(err, "step %v failed", name)
	}

	if step.Status == contracts.LogStatusRunning {
		step.Status = contracts.LogStatusSucceeded
	}

	log.Info().Msgf("[%v] Step %v after %.0f seconds", name, strings.ToLower(string(step.Status)), step.Duration.Seconds())

	return nil
}

func (s *service) fail(ctx context.Context, result Result, err error) (Result, error) {
	result.Status = contracts.LogStatusFailed
	if ctx.Err() != nil {
		result.Status = contracts.LogStatusCanceled
	}
	return result, err
}

func (s *service) appendLogLine(step *contracts.BuildLogStep, streamType, text string) {
	step.LogLines = append(step.LogLines, contracts.BuildLogLine{
		LineNumber: len(step.LogLines) + 1,
		Timestamp:  time.Now().UTC(),
		StreamType: streamType,
		Text:       s.obfuscationClient.Obfuscate(text),
	})
}

// ClassifyBuildOutput decides the outcome of a package build from its captured output
func ClassifyBuildOutput(output string) contracts.LogStatus {
	if strings.Contains(output, "error:") || strings.Contains(output, "Error:") {
		return contracts.LogStatusFailed
	}
	return contracts.LogStatusSucceeded
}

// ArchiveURL returns the location of the release archive, for example <base>/v5.x/linux-5.11.15.tar.xz
func ArchiveURL(baseURL, version string) string {
	major := strings.SplitN(version, ".", 2)[0]
	return fmt.Sprintf("%v/v%v.x/%v", strings.TrimSuffix(baseURL, "/"), major, ArchiveName(version))
}

// ArchiveName returns the file name of the release archive
func ArchiveName(version string) string {
	return fmt.Sprintf("linux-%v.tar.xz", version)
}

// SourceDirName returns the name of the directory the archive extracts into
func SourceDirName(version string) string {
	return fmt.Sprintf("linux-%v", version)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}
