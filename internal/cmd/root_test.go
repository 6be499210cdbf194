package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	assert.True(t, names["find"])
	assert.True(t, names["verify"])
	assert.True(t, names["list"])
	assert.True(t, names["history"])
}

func TestRootCommandHelp(t *testing.T) {
	root := NewRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "gomsv")
	assert.Contains(t, out.String(), "find")
}

func TestRootCommandUnknownSubcommand(t *testing.T) {
	root := NewRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"frobnicate"})

	require.Error(t, root.Execute())
}
