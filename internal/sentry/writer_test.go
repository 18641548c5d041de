package sentry

import (
	"bytes"
	"testing"

	gosentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestWriter_PassthroughToInner(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelError)

	msg := []byte("scenario reload failed\n")
	n, err := w.Write(msg)

	assert.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, string(msg), buf.String())
}

func TestWriter_DisabledPassthrough(t *testing.T) {
	enabled = false
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelInfo).WithCategory("focus")

	msg := []byte("focus node 7\n")
	n, err := w.Write(msg)

	assert.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, string(msg), buf.String())
	assert.Equal(t, "focus", w.category)
}

func TestLevel_BreadcrumbLevel(t *testing.T) {
	assert.Equal(t, gosentry.LevelDebug, LevelDebug.breadcrumbLevel())
	assert.Equal(t, gosentry.LevelInfo, LevelInfo.breadcrumbLevel())
	assert.Equal(t, gosentry.LevelWarning, LevelWarning.breadcrumbLevel())
	assert.Equal(t, gosentry.LevelError, LevelError.breadcrumbLevel())
}
