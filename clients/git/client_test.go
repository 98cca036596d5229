package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListRemoteTags(t *testing.T) {

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not available")
	}

	t.Run("ReturnsOneLinePerTagForRepositoryURL", func(t *testing.T) {

		repositoryDir := initRepositoryWithTags(t, "v5.10", "v5.10-rc1", "v5.4.10")
		client, _ := NewClient(t.TempDir())

		// act
		lines, err := client.ListRemoteTags(context.Background(), repositoryDir)

		assert.Nil(t, err)
		assert.Equal(t, 3, len(lines))
		for _, l := range lines {
			assert.True(t, strings.Contains(l, "\trefs/tags/v"), l)
		}
	})

	t.Run("UsesLocalCloneWhenRepositoryIsEmpty", func(t *testing.T) {

		repositoryDir := initRepositoryWithTags(t, "v6.1")
		workDir := t.TempDir()
		runGit(t, workDir, "clone", "--quiet", repositoryDir, "git")
		client, _ := NewClient(workDir)

		// act
		lines, err := client.ListRemoteTags(context.Background(), "")

		assert.Nil(t, err)
		if assert.Equal(t, 1, len(lines)) {
			assert.True(t, strings.HasSuffix(lines[0], "refs/tags/v6.1"))
		}
	})

	t.Run("ReturnsErrorWhenRepositoryDoesNotExist", func(t *testing.T) {

		client, _ := NewClient(t.TempDir())

		// act
		_, err := client.ListRemoteTags(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))

		assert.NotNil(t, err)
	})
}

func initRepositoryWithTags(t *testing.T, tags ...string) string {
	t.Helper()

	dir := t.TempDir()
	runGit(t, dir, "init", "--quiet")
	runGit(t, dir, "-c", "user.name=builder", "-c", "user.email=builder@example.com", "commit", "--quiet", "--allow-empty", "-m", "init")
	for _, tag := range tags {
		runGit(t, dir, "tag", tag)
	}

	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v: %s", strings.Join(args, " "), err, out)
	}
}
