package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"
	crypt "github.com/estafette/estafette-ci-crypt"
	foundation "github.com/estafette/estafette-foundation"
	"github.com/estafette/estafette-kernel-builder/clients/archive"
	"github.com/estafette/estafette-kernel-builder/clients/git"
	"github.com/estafette/estafette-kernel-builder/clients/kbuild"
	"github.com/estafette/estafette-kernel-builder/clients/mail"
	"github.com/estafette/estafette-kernel-builder/clients/obfuscation"
	"github.com/estafette/estafette-kernel-builder/clients/state"
	"github.com/estafette/estafette-kernel-builder/config"
	"github.com/estafette/estafette-kernel-builder/services/build"
	"github.com/estafette/estafette-kernel-builder/services/builder"
	"github.com/estafette/estafette-kernel-builder/services/evaluation"
	"github.com/estafette/estafette-kernel-builder/services/notification"
	"github.com/estafette/estafette-kernel-builder/services/release"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

var (
	appgroup  string
	app       string
	version   string
	branch    string
	revision  string
	buildDate string
)

var (
	settingsPath        = kingpin.Arg("settings", "Path to the settings file.").Required().String()
	workDir             = kingpin.Flag("workdir", "Working root holding the saved configuration, marker and build artifacts.").Default(".").Envar("WORKDIR").String()
	secretDecryptionKey = kingpin.Flag("secret-decryption-key", "Key to decrypt estafette.secret(...) values in the settings file.").Envar("SECRET_DECRYPTION_KEY").String()
	makeCommand         = kingpin.Flag("make", "Make binary used for configuring and packaging the kernel.").Default("make").Envar("MAKE").String()
)

func main() {

	// parse command line parameters
	kingpin.Parse()

	applicationInfo := foundation.NewApplicationInfo(appgroup, app, version, branch, revision, buildDate)

	// init log format from envvar ESTAFETTE_LOG_FORMAT
	foundation.InitLoggingFromEnv(applicationInfo)

	closer := initJaeger(applicationInfo.App)

	// create context to cancel commands on sigterm
	ctx := foundation.InitCancellationContext(context.Background())

	dir, err := filepath.Abs(*workDir)
	if err != nil {
		log.Fatal().Err(err).Msgf("Resolving working directory %v failed", *workDir)
	}

	var secretHelper crypt.SecretHelper
	if *secretDecryptionKey != "" {
		secretHelper = crypt.NewSecretHelper(*secretDecryptionKey, false)
	}

	settings, err := config.ReadSettingsFromFile(*settingsPath, dir, secretHelper)
	if err != nil {
		log.Fatal().Err(err).Msgf("Reading settings from %v failed", *settingsPath)
	}

	builderService := initBuilderService(ctx, dir, settings)

	report, err := builderService.Run(ctx)

	RenderStats(report.BuildLog.Steps)

	if err != nil {
		closer.Close()
		log.Fatal().Err(err).Msg("Running kernel build failed")
	}

	printStatusLine(os.Stdout, report)

	// flush spans before exiting
	closer.Close()
}

func initBuilderService(ctx context.Context, dir string, settings config.Settings) builder.Service {

	obfuscationClient, err := obfuscation.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Creating obfuscation client failed")
	}
	if err = obfuscationClient.CollectSecrets(settings); err != nil {
		log.Fatal().Err(err).Msg("Collecting secrets to obfuscate failed")
	}

	gitClient, err := git.NewClient(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating git client failed")
	}
	stateClient, err := state.NewClient(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating state client failed")
	}
	archiveClient, err := archive.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Creating archive client failed")
	}
	kbuildClient, err := kbuild.NewClient(*makeCommand)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating kbuild client failed")
	}

	var mailClient mail.Client
	when := ""
	if settings.Mail != nil {
		mailClient, err = mail.NewClient(*settings.Mail)
		if err != nil {
			log.Fatal().Err(err).Msg("Creating mail client failed")
		}
		when = settings.Mail.When
	}

	releaseService, err := release.NewService(gitClient, settings.Repository)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating release service failed")
	}
	buildService, err := build.NewService(archiveClient, kbuildClient, stateClient, obfuscationClient, dir, settings.ArchiveBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating build service failed")
	}
	evaluationService, err := evaluation.NewService()
	if err != nil {
		log.Fatal().Err(err).Msg("Creating evaluation service failed")
	}
	notificationService, err := notification.NewService(mailClient, evaluationService, when)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating notification service failed")
	}

	builderService, err := builder.NewService(releaseService, buildService, notificationService, stateClient, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating builder service failed")
	}

	return builderService
}

func printStatusLine(w io.Writer, report builder.Report) {
	switch report.Outcome {
	case builder.OutcomeSucceeded:
		fmt.Fprintln(w, aurora.Green(report.StatusLine()))
	case builder.OutcomeFailed:
		fmt.Fprintln(w, aurora.Red(report.StatusLine()))
	default:
		fmt.Fprintln(w, report.StatusLine())
	}
}

// initJaeger returns an instance of Jaeger Tracer that can be configured with environment variables
// https://github.com/jaegertracing/jaeger-client-go#environment-variables
func initJaeger(service string) io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger config from environment variables failed")
	}

	// disable tracing unless a collector is configured
	if cfg.ServiceName == "" {
		cfg.Disabled = true
	}

	closer, err := cfg.InitGlobalTracer(service, jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger tracer failed")
	}

	return closer
}
