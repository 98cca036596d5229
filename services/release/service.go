package release

import (
	"context"
	"regexp"
	"strings"

	"github.com/estafette/estafette-kernel-builder/clients/git"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoCandidates is returned when no stable tag survives filtering
	ErrNoCandidates = errors.New("no stable release tags found")

	tagReferenceRegex = regexp.MustCompile(`^[0-9a-f]*\trefs/tags/v(.*)$`)
)

// Service resolves the latest stable kernel release
//
//go:generate mockgen -package=release -destination ./mock.go -source=service.go
type Service interface {
	GetLatestVersion(ctx context.Context, lockPrefix string) (version string, err error)
}

// NewService returns a new release.Service
func NewService(gitClient git.Client, repository string) (Service, error) {
	return &service{
		gitClient:  gitClient,
		repository: repository,
	}, nil
}

type service struct {
	gitClient  git.Client
	repository string
}

func (s *service) GetLatestVersion(ctx context.Context, lockPrefix string) (version string, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "GetLatestVersion")
	defer span.Finish()
	span.SetTag("lock-version", lockPrefix)

	lines, err := s.gitClient.ListRemoteTags(ctx, s.repository)
	if err != nil {
		return "", errors.Wrap(err, "resolving latest version failed")
	}

	candidates := FilterStableVersions(lines, lockPrefix)
	if len(candidates) == 0 {
		if lockPrefix != "" {
			return "", errors.Wrapf(ErrNoCandidates, "no tag out of %v matches lock version %v", len(lines), lockPrefix)
		}
		return "", errors.Wrapf(ErrNoCandidates, "no tag out of %v is a stable release", len(lines))
	}

	var latest Version
	for i, c := range candidates {
		v, err := ParseVersion(c)
		if err != nil {
			return "", errors.Wrap(err, "parsing release tag failed")
		}
		if i == 0 || v.Compare(latest) > 0 {
			latest = v
		}
	}

	log.Info().Msgf("Latest stable version is %v, picked from %v candidates", latest, len(candidates))
	span.SetTag("latest-version", latest.String())

	return latest.String(), nil
}

// FilterStableVersions extracts versions from ls-remote lines, dropping pre-releases and versions outside the lock prefix
func FilterStableVersions(lines []string, lockPrefix string) (versions []string) {

	versions = []string{}
	for _, l := range lines {
		matches := tagReferenceRegex.FindStringSubmatch(strings.TrimRight(l, "\r"))
		if len(matches) != 2 {
			continue
		}
		v := matches[1]
		if strings.Contains(v, "-") {
			continue
		}
		if lockPrefix != "" && !strings.HasPrefix(v, lockPrefix) {
			continue
		}
		versions = append(versions, v)
	}

	return versions
}
