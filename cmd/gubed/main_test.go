package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirgeva/gubed/pkg/logging"
)

func TestParseLogLevelKnownValues(t *testing.T) {
	assert.Equal(t, logging.DEBUG, parseLogLevel("debug"))
	assert.Equal(t, logging.WARN, parseLogLevel("warn"))
	assert.Equal(t, logging.ERROR, parseLogLevel("error"))
	assert.Equal(t, logging.FATAL, parseLogLevel("fatal"))
}

func TestParseLogLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, logging.INFO, parseLogLevel(""))
	assert.Equal(t, logging.INFO, parseLogLevel("nonsense"))
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, logging.JSONFormat, parseLogFormat("json"))
	assert.Equal(t, logging.TextFormat, parseLogFormat("text"))
	assert.Equal(t, logging.TextFormat, parseLogFormat(""))
}
