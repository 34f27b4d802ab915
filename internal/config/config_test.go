package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := `hosts:
  lab:
    host: esx1.lab.local
    user: root
    password: secret
  prod:
    host: 10.0.0.5
    port: 2222
    user: admin
    password: hunter2
`

	cfg, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, cfg.Hosts, 2)

	lab, err := cfg.Lookup("lab")
	require.NoError(t, err)
	assert.Equal(t, "esx1.lab.local", lab.Host)
	assert.Equal(t, "root", lab.User)
	assert.Equal(t, DefaultPort, lab.Port, "port should default to 22")

	prod, err := cfg.Lookup("prod")
	require.NoError(t, err)
	assert.Equal(t, 2222, prod.Port)
}

func TestParseMissingFields(t *testing.T) {
	_, err := Parse([]byte("hosts:\n  lab:\n    user: root\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'host' is required")

	_, err = Parse([]byte("hosts:\n  lab:\n    host: esx1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'user' is required")
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("hosts: [not a map"))
	require.Error(t, err)
}

func TestLookupMissing(t *testing.T) {
	cfg, err := Parse([]byte("hosts: {}\n"))
	require.NoError(t, err)

	_, err = cfg.Lookup("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hosts.yaml")

	data := `hosts:
  lab:
    host: esx1.lab.local
    user: root
    password: secret
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := ParseFile(path)
	require.NoError(t, err)

	lab, err := cfg.Lookup("lab")
	require.NoError(t, err)
	assert.Equal(t, "esx1.lab.local", lab.Host)
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile("/nonexistent/hosts.yaml")
	require.Error(t, err)
}
