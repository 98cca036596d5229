package kbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Client invokes the kernel build system inside an extracted source tree
//
//go:generate mockgen -package=kbuild -destination ./mock.go -source=client.go
type Client interface {
	OldConfig(ctx context.Context, sourceDir string) (err error)
	BuildPackage(ctx context.Context, sourceDir string, jobs int) (output string, exitCode int, err error)
}

// NewClient returns a new kbuild.Client running the given make binary
func NewClient(makeCommand string) (Client, error) {
	if makeCommand == "" {
		makeCommand = "make"
	}
	return &client{
		makeCommand: makeCommand,
	}, nil
}

type client struct {
	makeCommand string
}

// OldConfig runs 'make oldconfig' answering every prompt with the empty default, like 'yes "" | make oldconfig'
func (c *client) OldConfig(ctx context.Context, sourceDir string) (err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "OldConfig")
	defer span.Finish()

	cmd := exec.CommandContext(ctx, c.makeCommand, "oldconfig")
	cmd.Dir = sourceDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err = cmd.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	// background writer: keeps feeding empty answers until make exits
	g.Go(func() error {
		defer stdin.Close()
		answer := []byte("\n")
		for {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return nil
			default:
			}
			if _, err := stdin.Write(answer); err != nil {
				// the pipe closes once make has exited
				return nil
			}
		}
	})

	// foreground waiter
	waitErr := cmd.Wait()
	close(done)
	_ = g.Wait()

	log.Debug().Msgf("Output of '%v oldconfig':\n%v", c.makeCommand, output.String())

	if waitErr != nil {
		return fmt.Errorf("'%v oldconfig' failed: %w: %s", c.makeCommand, waitErr, lastBytes(output.Bytes(), 2048))
	}

	return nil
}

// BuildPackage runs 'make bindeb-pkg -j <jobs>' and returns stdout and stderr combined; a non-zero exit code is returned, not treated as an error
func (c *client) BuildPackage(ctx context.Context, sourceDir string, jobs int) (output string, exitCode int, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "BuildPackage")
	defer span.Finish()
	span.SetTag("jobs", jobs)

	cmd := exec.CommandContext(ctx, c.makeCommand, "bindeb-pkg", "-j", strconv.Itoa(jobs))
	cmd.Dir = sourceDir

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	cmd.Stdin = nil

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			span.SetTag("exit-code", exitErr.ExitCode())
			return combined.String(), exitErr.ExitCode(), nil
		}
		return combined.String(), -1, err
	}

	return combined.String(), 0, nil
}

func lastBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
