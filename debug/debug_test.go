package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { Init(false) })
	var buf bytes.Buffer

	InitWriter(true, &buf)
	Debug("Found blocks", "count", 2)

	assert.True(t, Enabled())
	assert.Contains(t, buf.String(), "Found blocks")
	assert.Contains(t, buf.String(), "count=2")

	buf.Reset()
	InitWriter(false, &buf)
	Error("dropped")

	assert.False(t, Enabled())
	assert.Empty(t, buf.String())
}
