package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teapot-build/teapot/internal/manifest"
	"github.com/teapot-build/teapot/internal/settings"
)

// writeStub drops an executable shell script into dir and returns its path.
// Stubs append their invocation to the file named by TEAPOT_TEST_LOG so
// tests can assert on what the toolchain was asked to do.
func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func logStub(t *testing.T, dir, name string) string {
	return writeStub(t, dir, name, `echo "`+name+` $@" >> "$TEAPOT_TEST_LOG"`+"\n")
}

func readLog(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(os.Getenv("TEAPOT_TEST_LOG"))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func stubSettings(t *testing.T) (*settings.Settings, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TEAPOT_TEST_LOG", filepath.Join(dir, "invocations.log"))
	return &settings.Settings{
		CC:   logStub(t, dir, "cc"),
		AR:   logStub(t, dir, "ar"),
		NM:   logStub(t, dir, "nm"),
		Jobs: 1,
	}, dir
}

func TestObjectPath(t *testing.T) {
	t.Parallel()

	c := New("target/debug", settings.Default())

	assert.Equal(t,
		filepath.Join("target", "debug", "objects", "src", "foo.o"),
		c.objectPath("src/foo.c"))
	assert.Equal(t,
		filepath.Join("target", "debug", "objects", "src", "foo.x.o"),
		c.objectPath("src/foo.x.c"))

	// Same-named files in different directories stay apart.
	assert.NotEqual(t, c.objectPath("a/src/util.c"), c.objectPath("b/src/util.c"))

	// Parent-directory segments must not escape the objects tree.
	up := c.objectPath("../dep/src/foo.c")
	assert.True(t, strings.HasPrefix(up, filepath.Join("target", "debug", "objects")+string(filepath.Separator)), up)
}

func TestCompile_FlagOrder(t *testing.T) {
	s, dir := stubSettings(t)
	src := filepath.Join(dir, "src", "main.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("int main(void) { return 0; }\n"), 0o644))

	c := New(filepath.Join(dir, "target"), s)
	c.Define(manifest.Define{Name: "VERBOSE"})
	c.Define(manifest.Define{Name: "MAX_DEPTH", Value: "16"})
	c.Include("include")
	c.SetOptimizationLevel(3)

	require.NoError(t, c.Compile(context.Background(), []string{src}, nil))

	log := readLog(t)
	require.Len(t, log, 1)
	// Defines first, then the accumulated compile flags, then -c src -o obj.
	want := "cc -DVERBOSE -DMAX_DEPTH=16 -Iinclude -O3 -c " + src + " -o " + c.objectPath(src)
	assert.Equal(t, want, log[0])
}

func TestCompile_ArtifactOrder(t *testing.T) {
	s, dir := stubSettings(t)
	c := New(filepath.Join(dir, "target"), s)

	first := []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}
	require.NoError(t, c.Compile(context.Background(), first, nil))
	c.AddStaticLibrary("dep")
	require.NoError(t, c.Compile(context.Background(), []string{filepath.Join(dir, "c.c")}, nil))

	// Most recently compiled group first; appended archives stay last.
	assert.Equal(t, []string{
		c.objectPath(filepath.Join(dir, "c.c")),
		c.objectPath(first[0]),
		c.objectPath(first[1]),
		c.ArchivePath("dep"),
	}, c.artifacts)
}

func TestCompile_Progress(t *testing.T) {
	s, dir := stubSettings(t)
	c := New(filepath.Join(dir, "target"), s)

	var counts []int
	sources := []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c"), filepath.Join(dir, "c.c")}
	err := c.Compile(context.Background(), sources, func(done, total int) {
		assert.Equal(t, 3, total)
		counts = append(counts, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, counts)
}

func TestCompile_FailFast(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEAPOT_TEST_LOG", filepath.Join(dir, "invocations.log"))
	cc := writeStub(t, dir, "cc", `case "$@" in
*bad.c*)
  echo "bad.c: error: expected ';'" >&2
  exit 1
  ;;
esac
echo "cc $@" >> "$TEAPOT_TEST_LOG"
`)
	s := &settings.Settings{CC: cc, AR: "ar", NM: "nm", Jobs: 4}
	c := New(filepath.Join(dir, "target"), s)

	sources := []string{
		filepath.Join(dir, "ok1.c"),
		filepath.Join(dir, "bad.c"),
		filepath.Join(dir, "ok2.c"),
	}
	err := c.Compile(context.Background(), sources, nil)
	require.Error(t, err)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Output, "expected ';'")
	assert.Contains(t, err.Error(), "bad.c")

	// The failed call leaves no objects registered for linking.
	assert.Empty(t, c.artifacts)
}

func TestLink_Library(t *testing.T) {
	s, dir := stubSettings(t)
	c := New(filepath.Join(dir, "target"), s)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))

	require.NoError(t, c.Compile(context.Background(), []string{filepath.Join(dir, "a.c")}, nil))
	require.NoError(t, c.Link(context.Background(), "mylib", Library))

	log := readLog(t)
	require.Len(t, log, 2)
	assert.Equal(t, "ar rcs "+c.ArchivePath("mylib")+" "+c.objectPath(filepath.Join(dir, "a.c")), log[1])
}

func TestLink_Binary(t *testing.T) {
	s, dir := stubSettings(t)
	c := New(filepath.Join(dir, "target"), s)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))

	require.NoError(t, c.Compile(context.Background(), []string{filepath.Join(dir, "main.c")}, nil))
	c.AddStaticLibrary("dep")
	c.AddSystemLibrary("pthread")
	require.NoError(t, c.Link(context.Background(), "app", Binary))

	log := readLog(t)
	require.Len(t, log, 2)
	want := "cc -lm -lpthread " +
		c.objectPath(filepath.Join(dir, "main.c")) + " " +
		c.ArchivePath("dep") + " -o " + c.BinaryPath("app")
	assert.Equal(t, want, log[1])
}

func TestLink_Failure(t *testing.T) {
	dir := t.TempDir()
	ar := writeStub(t, dir, "ar", `echo "undefined reference" >&2
exit 1
`)
	s := &settings.Settings{CC: "cc", AR: ar, NM: "nm", Jobs: 1}
	c := New(filepath.Join(dir, "target"), s)

	err := c.Link(context.Background(), "broken", Library)
	require.Error(t, err)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Output, "undefined reference")
}
