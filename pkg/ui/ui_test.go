package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVariablesSplitsAndSkipsMalformed(t *testing.T) {
	vars := ParseVariables(`x=3|y=hello world|garbage|z=`)
	assert.Equal(t, []Variable{
		{Name: "x", Value: "3"},
		{Name: "y", Value: "hello world"},
		{Name: "z", Value: ""},
	}, vars)
}

func TestParseVariablesEmpty(t *testing.T) {
	assert.Nil(t, ParseVariables(""))
}

func TestDebugActionString(t *testing.T) {
	assert.Equal(t, "Step", Step.String())
	assert.Equal(t, "Continue", Continue.String())
	assert.Equal(t, "Quit", Quit.String())
	assert.Equal(t, "None", None.String())
}
