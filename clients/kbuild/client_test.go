package kbuild

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fakeKernelMakefile = `oldconfig:
	@read first && read second && read third && echo "answered" > .oldconfig-done

bindeb-pkg:
	@echo "  CC      kernel/fork.o"
	@echo "dpkg-deb: building package 'linux-image' in '../linux-image.deb'." 1>&2
`

const failingKernelMakefile = `oldconfig:
	@exit 1

bindeb-pkg:
	@echo "drivers/foo.c:12:3: error: unknown type name" 1>&2
	@exit 2
`

func TestOldConfig(t *testing.T) {

	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make is not available")
	}

	t.Run("AnswersPromptsWithEmptyDefaults", func(t *testing.T) {

		dir := writeMakefile(t, fakeKernelMakefile)
		client, _ := NewClient("")

		// act
		err := client.OldConfig(context.Background(), dir)

		assert.Nil(t, err)
		data, err := os.ReadFile(filepath.Join(dir, ".oldconfig-done"))
		assert.Nil(t, err)
		assert.Equal(t, "answered\n", string(data))
	})

	t.Run("ReturnsErrorWhenMakeFails", func(t *testing.T) {

		dir := writeMakefile(t, failingKernelMakefile)
		client, _ := NewClient("make")

		// act
		err := client.OldConfig(context.Background(), dir)

		assert.NotNil(t, err)
	})
}

func TestBuildPackage(t *testing.T) {

	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make is not available")
	}

	t.Run("ReturnsCombinedStdoutAndStderr", func(t *testing.T) {

		dir := writeMakefile(t, fakeKernelMakefile)
		client, _ := NewClient("make")

		// act
		output, exitCode, err := client.BuildPackage(context.Background(), dir, 3)

		assert.Nil(t, err)
		assert.Equal(t, 0, exitCode)
		assert.True(t, strings.Contains(output, "CC      kernel/fork.o"))
		assert.True(t, strings.Contains(output, "dpkg-deb: building package"))
	})

	t.Run("ReturnsExitCodeWithoutErrorWhenMakeFails", func(t *testing.T) {

		dir := writeMakefile(t, failingKernelMakefile)
		client, _ := NewClient("make")

		// act
		output, exitCode, err := client.BuildPackage(context.Background(), dir, 1)

		assert.Nil(t, err)
		assert.NotEqual(t, 0, exitCode)
		assert.True(t, strings.Contains(output, "error: unknown type name"))
	})

	t.Run("ReturnsErrorWhenMakeCannotBeStarted", func(t *testing.T) {

		dir := writeMakefile(t, fakeKernelMakefile)
		client, _ := NewClient(filepath.Join(dir, "no-such-make"))

		// act
		_, exitCode, err := client.BuildPackage(context.Background(), dir, 1)

		assert.NotNil(t, err)
		assert.Equal(t, -1, exitCode)
	})
}

func writeMakefile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return dir
}
