package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tamirms/chd"
)

func writeKeyFile(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "KEY-%d\n", i)
	}
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.Writer = &out
	err := cmd.Run(context.Background(), append([]string{"chdtool", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestBuildQueryVerify(t *testing.T) {
	keys := writeKeyFile(t, 2000)
	fn := filepath.Join(t.TempDir(), "keys.chd")

	_, err := runTool(t, "build", "--keys", keys, "--out", fn, "--load", "1.0")
	require.NoError(t, err)

	f, err := chd.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, uint32(2027), f.MaxValue())

	out, err := runTool(t, "query", "--func", fn, "KEY-0", "KEY-1999")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, fmt.Sprintf("KEY-0\t%d", f.Hash([]byte("KEY-0"))), lines[0])

	_, err = runTool(t, "verify", "--func", fn, "--keys", keys, "--workers", "3")
	require.NoError(t, err)

	out, err = runTool(t, "stats", "--func", fn)
	require.NoError(t, err)
	require.Contains(t, out, "2027")
}

func TestVerifyDetectsWrongKeys(t *testing.T) {
	keys := writeKeyFile(t, 500)
	fn := filepath.Join(t.TempDir(), "keys.chd")
	_, err := runTool(t, "build", "--keys", keys, "--out", fn)
	require.NoError(t, err)

	// Twice as many keys as slots cannot be injective.
	other := writeKeyFile(t, 2000)
	_, err = runTool(t, "verify", "--func", fn, "--keys", other)
	require.Error(t, err)
}

func TestBuildEmptyKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := runTool(t, "build", "--keys", path, "--out", filepath.Join(t.TempDir(), "x.chd"))
	require.Error(t, err)
}

func TestQueryRequiresKeys(t *testing.T) {
	keys := writeKeyFile(t, 10)
	fn := filepath.Join(t.TempDir(), "keys.chd")
	_, err := runTool(t, "build", "--keys", keys, "--out", fn)
	require.NoError(t, err)

	_, err = runTool(t, "query", "--func", fn)
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := rootCommand()
	err := cmd.Run(context.Background(), []string{"chdtool", "--log-level", "loud", "stats", "--func", "x"})
	require.Error(t, err)
}
