package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"iconhunt/internal/favicon"
)

func TestCollectURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("# sites\nhttps://a.example\n\n  https://b.example  \n"), 0o600))

	urls, err := collectURLs(path, []string{"https://c.example", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://c.example", "https://a.example", "https://b.example"}, urls)

	_, err = collectURLs(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func sampleItems() []favicon.BatchItem {
	icons := []favicon.Icon{
		{URL: "https://a.example/apple-touch-icon.png", Width: 180, Height: 180, Format: "png"},
		{URL: "https://a.example/favicon.ico", Format: "ico"},
	}
	return []favicon.BatchItem{
		{URL: "https://a.example", Outcome: favicon.OutcomeOK, Result: &favicon.Result{Icons: icons, FinalURL: "https://a.example/"}},
		{URL: "bad", Outcome: favicon.OutcomeInvalidURL, Error: "invalid url", Err: errors.New("invalid url")},
	}
}

func TestBuildReportBest(t *testing.T) {
	report := buildReport(sampleItems(), false)
	require.Len(t, report, 2)

	require.NotNil(t, report[0].Best)
	assert.Equal(t, 180, report[0].Best.Width)
	assert.Nil(t, report[0].Favicons)
	assert.Equal(t, "invalid url", report[1].Error)
}

func TestBuildReportAll(t *testing.T) {
	report := buildReport(sampleItems(), true)
	assert.Nil(t, report[0].Best)
	assert.Len(t, report[0].Favicons, 2)
	assert.Equal(t, "ico", report[0].Favicons[1].Format)
}

func TestWriteReport(t *testing.T) {
	report := buildReport(sampleItems(), false)

	var yamlOut bytes.Buffer
	require.NoError(t, writeReport(&yamlOut, report, false))
	var fromYAML []Entry
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &fromYAML))
	assert.Equal(t, report, fromYAML)

	var jsonOut bytes.Buffer
	require.NoError(t, writeReport(&jsonOut, report, true))
	var fromJSON []Entry
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &fromJSON))
	assert.Equal(t, report, fromJSON)
}
