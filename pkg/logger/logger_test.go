package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerWritesJSON(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	var buf bytes.Buffer
	l := NewWithWriter("solver", &buf)
	l.Infof("solved %d slots", 20)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "solver", line["component"])
	assert.Equal(t, "solved 20 slots", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	var buf bytes.Buffer
	l := NewWithWriter("test", &buf)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Contains(t, buf.String(), "info test")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Infof("nothing %s", "happens")
	l.Debugw("still nothing", nil)
}
