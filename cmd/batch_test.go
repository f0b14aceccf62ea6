package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoinebi/antoine/internal/config"
)

func TestLoadBatchInputs_ParsesNameAndHomepageURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.json")

	data, err := json.Marshal([]batchEntry{
		{Name: "Acme", HomepageURL: "https://acme.example"},
		{Name: "Widget Co", HomepageURL: "widgetco.example"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	inputs, err := loadBatchInputs(path)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "Acme", inputs[0].Name)
	assert.Equal(t, "https://acme.example", inputs[0].HomepageURL)
	assert.Equal(t, "widgetco.example", inputs[1].HomepageURL)
}

func TestLoadBatchInputs_MissingFileReturnsError(t *testing.T) {
	_, err := loadBatchInputs(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
}

func TestLoadBatchInputs_MalformedJSONReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := loadBatchInputs(path)
	require.Error(t, err)
}

func TestBatchCmd_RunE_EmptyInputFileSkipsPipelineInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	cfg = &config.Config{}

	batchCmd.SetContext(context.Background())
	defer batchCmd.SetContext(nil)

	batchInputFile = path
	defer func() { batchInputFile = "" }()

	err := batchCmd.RunE(batchCmd, nil)
	require.NoError(t, err)
}

func TestBatchCmd_RunE_FailsOnInitPipeline_MissingAnthropicKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.json")
	data, err := json.Marshal([]batchEntry{{Name: "Acme", HomepageURL: "https://acme.example"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg = &config.Config{}

	batchCmd.SetContext(context.Background())
	defer batchCmd.SetContext(nil)

	batchInputFile = path
	defer func() { batchInputFile = "" }()

	runErr := batchCmd.RunE(batchCmd, nil)
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "anthropic.key")
}
