package builder

import (
	"context"
	"fmt"

	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/estafette/estafette-kernel-builder/clients/state"
	"github.com/estafette/estafette-kernel-builder/config"
	"github.com/estafette/estafette-kernel-builder/services/build"
	"github.com/estafette/estafette-kernel-builder/services/notification"
	"github.com/estafette/estafette-kernel-builder/services/release"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Outcome is the end state of a run that did not hit a fatal error
type Outcome int

const (
	// OutcomeNoNewVersion means the latest release was built before
	OutcomeNoNewVersion Outcome = iota
	// OutcomeSucceeded means a newer release was built and packaged
	OutcomeSucceeded
	// OutcomeFailed means a newer release was built but its output contains errors
	OutcomeFailed
)

// Report summarizes a single run
type Report struct {
	Outcome       Outcome
	LatestVersion string
	BuiltVersion  string
	BuildLog      contracts.BuildLog
	RunLogPath    string
}

// StatusLine returns the single line printed at the end of every run
func (r Report) StatusLine() string {
	switch r.Outcome {
	case OutcomeSucceeded:
		return fmt.Sprintf("Build of linux %v succeeded.", r.LatestVersion)
	case OutcomeFailed:
		return fmt.Sprintf("Build of linux %v failed, check %v.", r.LatestVersion, build.RunLogFile)
	}
	return "No new version is available."
}

// Service checks for a newer stable kernel and builds it
//
//go:generate mockgen -package=builder -destination ./mock.go -source=service.go
type Service interface {
	Run(ctx context.Context) (report Report, err error)
}

// NewService returns a new builder.Service
func NewService(releaseService release.Service, buildService build.Service, notificationService notification.Service, stateClient state.Client, settings config.Settings) (Service, error) {
	return &service{
		releaseService:      releaseService,
		buildService:        buildService,
		notificationService: notificationService,
		stateClient:         stateClient,
		settings:            settings,
	}, nil
}

type service struct {
	releaseService      release.Service
	buildService        build.Service
	notificationService notification.Service
	stateClient         state.Client
	settings            config.Settings
}

func (s *service) Run(ctx context.Context) (report Report, err error) {

	rootSpan, ctx := opentracing.StartSpanFromContext(ctx, "RunKernelBuild")
	defer rootSpan.Finish()

	lockVersion := s.settings.LockVersion
	if lockVersion == "" {
		lockVersion, err = s.stateClient.GetLockVersion()
		if err != nil {
			return report, errors.Wrap(err, "reading lock version failed")
		}
	}
	if lockVersion != "" {
		log.Info().Msgf("Restricting builds to versions starting with %v", lockVersion)
	}

	report.LatestVersion, err = s.releaseService.GetLatestVersion(ctx, lockVersion)
	if err != nil {
		return report, err
	}

	report.BuiltVersion, err = s.stateClient.GetBuiltVersion()
	if err != nil {
		return report, errors.Wrap(err, "reading built version failed")
	}

	comparison, err := release.CompareVersions(report.LatestVersion, report.BuiltVersion)
	if err != nil {
		return report, errors.Wrap(err, "comparing versions failed")
	}

	log.Info().Msgf("Latest version is %v, last built version is %v", report.LatestVersion, report.BuiltVersion)

	if comparison <= 0 {
		report.Outcome = OutcomeNoNewVersion
		rootSpan.SetTag("outcome", "no-new-version")
		return report, nil
	}

	log.Info().Msgf("Building linux %v with %v jobs...", report.LatestVersion, s.settings.Jobs)

	result, err := s.buildService.Build(ctx, report.LatestVersion, s.settings.Jobs)
	report.BuildLog = result.BuildLog
	report.RunLogPath = result.RunLogPath
	if err != nil {
		return report, errors.Wrapf(err, "building linux %v failed", report.LatestVersion)
	}

	if result.Status != contracts.LogStatusSucceeded {
		report.Outcome = OutcomeFailed
		rootSpan.SetTag("outcome", "failed")
		return report, nil
	}

	report.Outcome = OutcomeSucceeded
	rootSpan.SetTag("outcome", "succeeded")

	if err = s.notificationService.Notify(ctx, report.LatestVersion, result.Status); err != nil {
		return report, err
	}

	return report, nil
}
