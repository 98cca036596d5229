package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
)

// Client lists the tags of the upstream kernel repository
//
//go:generate mockgen -package=git -destination ./mock.go -source=client.go
type Client interface {
	ListRemoteTags(ctx context.Context, repository string) (lines []string, err error)
}

// NewClient returns a new git.Client; workDir is used as the clone location when no repository url is given
func NewClient(workDir string) (Client, error) {
	return &client{
		workDir: workDir,
	}, nil
}

type client struct {
	workDir string
}

func (c *client) ListRemoteTags(ctx context.Context, repository string) (lines []string, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "ListRemoteTags")
	defer span.Finish()

	args := []string{"ls-remote", "--tags", "--refs"}

	cmd := exec.CommandContext(ctx, "git")
	if repository != "" {
		args = append(args, repository)
		cmd.Dir = c.workDir
	} else {
		// fall back to the origin of a local clone
		cmd.Dir = filepath.Join(c.workDir, "git")
	}
	cmd.Args = append(cmd.Args, args...)

	log.Debug().Msgf("Running command 'git %v' in %v", strings.Join(args, " "), cmd.Dir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing remote tags failed: %w: %v", err, strings.TrimSpace(stderr.String()))
	}

	for _, l := range strings.Split(string(out), "\n") {
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}

	log.Debug().Msgf("Retrieved %v tag references", len(lines))

	return lines, nil
}
