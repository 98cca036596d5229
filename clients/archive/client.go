package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/rs/zerolog/log"
	"github.com/sethgrid/pester"
)

// Client downloads, unpacks and removes kernel source archives
//
//go:generate mockgen -package=archive -destination ./mock.go -source=client.go
type Client interface {
	Download(ctx context.Context, url, path string) (err error)
	Extract(ctx context.Context, archivePath, targetDir string) (err error)
	Remove(paths ...string) (err error)
}

// NewClient returns a new archive.Client
func NewClient() (Client, error) {
	return &client{}, nil
}

type client struct {
}

func (c *client) Download(ctx context.Context, url, path string) (err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "DownloadArchive")
	defer span.Finish()
	span.SetTag("url", url)

	// a single attempt; failed downloads are not retried
	httpClient := pester.NewExtendedClient(&http.Client{Transport: &nethttp.Transport{}})
	httpClient.MaxRetries = 1
	httpClient.Backoff = pester.DefaultBackoff
	httpClient.KeepLog = true

	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}

	// add tracing context
	request = request.WithContext(opentracing.ContextWithSpan(ctx, span))

	// collect additional information on setting up connections
	request, ht := nethttp.TraceRequest(span.Tracer(), request)

	response, err := httpClient.Do(request)
	if err != nil {
		span.SetTag("error", true)
		span.LogFields(
			tracingLog.String("error", err.Error()),
		)
		log.Error().Err(err).Str("pesterLogs", httpClient.LogString()).Msgf("Failed downloading %v", url)
		return fmt.Errorf("downloading %v failed: %w", url, err)
	}
	defer response.Body.Close()
	defer ht.Finish()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %v failed with status code %v", url, response.StatusCode)
	}

	// write to a temporary file first so an interrupted download never counts as present
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.partial")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	written, err := io.Copy(tmpFile, response.Body)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %v failed: %w", path, err)
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmpFile.Name(), path); err != nil {
		return err
	}

	log.Debug().Str("pesterLogs", httpClient.LogString()).Msgf("Downloaded %v bytes from %v to %v", written, url, path)

	return nil
}

func (c *client) Extract(ctx context.Context, archivePath, targetDir string) (err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "ExtractArchive")
	defer span.Finish()
	span.SetTag("archive", archivePath)

	cmd := exec.CommandContext(ctx, "tar", "xf", archivePath, "-C", targetDir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("extracting %v failed: %w: %s", archivePath, err, out)
	}

	return nil
}

// Remove deletes files and directory trees; paths that do not exist are ignored
func (c *client) Remove(paths ...string) (err error) {
	for _, p := range paths {
		log.Debug().Msgf("Removing %v", p)
		if err = os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}
