package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownload(t *testing.T) {

	t.Run("WritesResponseBodyToPath", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v5.x/linux-5.11.15.tar.xz", r.URL.Path)
			_, _ = w.Write([]byte("archive-bytes"))
		}))
		defer server.Close()

		client, _ := NewClient()
		path := filepath.Join(t.TempDir(), "linux-5.11.15.tar.xz")

		// act
		err := client.Download(context.Background(), server.URL+"/v5.x/linux-5.11.15.tar.xz", path)

		assert.Nil(t, err)
		data, err := os.ReadFile(path)
		assert.Nil(t, err)
		assert.Equal(t, "archive-bytes", string(data))
	})

	t.Run("ReturnsErrorAndLeavesNoFileWhenStatusIsNotOK", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client, _ := NewClient()
		dir := t.TempDir()
		path := filepath.Join(dir, "linux-9.9.9.tar.xz")

		// act
		err := client.Download(context.Background(), server.URL+"/v9.x/linux-9.9.9.tar.xz", path)

		assert.NotNil(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
		entries, _ := os.ReadDir(dir)
		assert.Equal(t, 0, len(entries))
	})
}

func TestExtract(t *testing.T) {

	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar is not available")
	}

	t.Run("UnpacksArchiveIntoTargetDir", func(t *testing.T) {

		dir := t.TempDir()
		archivePath := filepath.Join(dir, "linux-5.4.10.tar.gz")
		writeTarGz(t, archivePath, map[string]string{
			"linux-5.4.10/Makefile": "all:\n",
		})
		client, _ := NewClient()

		// act
		err := client.Extract(context.Background(), archivePath, dir)

		assert.Nil(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "linux-5.4.10", "Makefile"))
		assert.Nil(t, err)
		assert.Equal(t, "all:\n", string(data))
	})

	t.Run("ReturnsErrorWhenArchiveDoesNotExist", func(t *testing.T) {

		dir := t.TempDir()
		client, _ := NewClient()

		// act
		err := client.Extract(context.Background(), filepath.Join(dir, "missing.tar.xz"), dir)

		assert.NotNil(t, err)
	})
}

func TestRemove(t *testing.T) {

	t.Run("RemovesFilesAndDirectoryTrees", func(t *testing.T) {

		dir := t.TempDir()
		file := filepath.Join(dir, "linux-5.4.10.tar.xz")
		tree := filepath.Join(dir, "linux-5.4.10")
		_ = os.WriteFile(file, []byte("x"), 0644)
		_ = os.MkdirAll(filepath.Join(tree, "arch", "x86"), 0755)
		_ = os.WriteFile(filepath.Join(tree, "arch", "x86", "Kconfig"), []byte("x"), 0644)
		client, _ := NewClient()

		// act
		err := client.Remove(file, tree)

		assert.Nil(t, err)
		_, err = os.Stat(file)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(tree)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("IgnoresPathsThatDoNotExist", func(t *testing.T) {

		dir := t.TempDir()
		client, _ := NewClient()

		// act
		err := client.Remove(filepath.Join(dir, "linux-5.4.10.tar.xz"), filepath.Join(dir, "linux-5.4.10"))

		assert.Nil(t, err)
	})
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}
