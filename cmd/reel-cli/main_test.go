package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, path := range [][]string{{"migrate"}, {"user", "create"}, {"enrich"}, {"export"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestFlagValidation(t *testing.T) {
	cases := map[string][]string{
		"--username is required": {"user", "create"},
		`unknown role "root"`:    {"user", "create", "-u", "bob", "--role", "root"},
		"--user is required":     {"export", "--list", "watchlist"},
	}
	for want, args := range cases {
		root := newRootCommand()
		root.SetArgs(args)
		root.SetOut(&bytes.Buffer{})
		err := root.Execute()
		require.Error(t, err, args)
		assert.Equal(t, want, err.Error())
	}
}
