//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpOpenPlayer,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpOpenPlayer,
			err:      errors.New("no playable track"),
			expected: "Failed to open player: no playable track",
		},
		{
			name:     "switch operation",
			op:       OpSwitchProvider,
			err:      errors.New("backend unreachable"),
			expected: "Failed to switch provider: backend unreachable",
		},
		{
			name:     "acquire operation",
			op:       OpAcquire,
			err:      errors.New("invalid track id"),
			expected: "Failed to start provider session: invalid track id",
		},
		{
			name:     "persistence operation",
			op:       OpStateSave,
			err:      errors.New("database locked"),
			expected: "Failed to save player state: database locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpAcquire,
			context:  "spotify",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpAcquire,
			context:  "spotify",
			err:      errors.New("token expired"),
			expected: "Failed to start provider session 'spotify': token expired",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpAcquire,
			context:  "",
			err:      errors.New("token expired"),
			expected: "Failed to start provider session: token expired",
		},
		{
			name:     "retarget with track context",
			op:       OpRetarget,
			context:  "t42",
			err:      errors.New("not found"),
			expected: "Failed to change track 't42': not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpOpenPlayer, OpSwitchProvider, OpRetarget, OpSeek,
		OpAcquire, OpRelease,
		OpRecordPlay,
		OpStateLoad, OpStateSave, OpQueueLoad, OpQueueSave,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
