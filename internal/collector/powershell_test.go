package collector

import (
	"context"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16LE(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestDecodeOutput(t *testing.T) {
	assert.Equal(t, "", decodeOutput(nil))
	assert.Equal(t, `[{"Id":1}]`, decodeOutput([]byte(`[{"Id":1}]`)))
	assert.Equal(t, `{"a":"ü"}`, decodeOutput(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":"ü"}`)...)))
	assert.Equal(t, `{"Message":"Привет"}`, decodeOutput(utf16LE(`{"Message":"Привет"}`)))
}

func TestNewPowerShellRunnerDefaults(t *testing.T) {
	r := NewPowerShellRunner("", time.Second)
	assert.Equal(t, "powershell", r.Executable)
	assert.Equal(t, time.Second, r.Timeout)
}

func TestPowerShellRunnerMissingExecutable(t *testing.T) {
	r := NewPowerShellRunner("elog-no-such-shell-for-tests", 0)
	_, err := r.Run(context.Background(), "Get-Date")
	require.Error(t, err)

	c := NewEventLogCollector(WithRunner(r))
	res := c.GetWMILogs(context.Background(), 1)
	_, hasError := res.(map[string]any)["error"]
	assert.True(t, hasError)
}
