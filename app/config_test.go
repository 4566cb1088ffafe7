package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--json", "--config", "../etc/"})

	require.NoError(t, Execute())

	var dumped map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &dumped))
	assert.Equal(t, "classgroups", dumped["Title"])
}
