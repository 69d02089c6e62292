package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// mockRunner records commands and serves canned output
type mockRunner struct {
	calls     []mockCall
	runErr    error
	outputErr error
	stdout    []byte
	waitErr   error
	startErr  error
}

type mockCall struct {
	name string
	args []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	return m.runErr
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	return []byte("ffmpeg version 6.1"), nil
}

func (m *mockRunner) Start(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.startErr != nil {
		return nil, nil, m.startErr
	}
	return io.NopCloser(bytes.NewReader(m.stdout)), func() error { return m.waitErr }, nil
}

// hasPair reports whether flag is immediately followed by value in args
func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

var errBoom = errors.New("boom")
