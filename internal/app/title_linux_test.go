//go:build linux

package app

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadName(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("/proc/thread-self/comm")
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func TestSetProcessTitle_RenamesCallingThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	old := threadName(t)
	defer func() { _ = setProcessTitle(old) }()

	require.NoError(t, setProcessTitle("wardend: t"))
	assert.Equal(t, "wardend: t", threadName(t))

	require.NoError(t, setProcessTitle("wardend: a-very-long-name"))
	assert.Equal(t, "wardend: a-very", threadName(t))
}
