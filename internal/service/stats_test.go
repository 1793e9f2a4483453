package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/data2rest/logscope/internal/models"
)

func entries(actions ...string) []models.LogEntry {
	out := make([]models.LogEntry, len(actions))
	for i, a := range actions {
		out[i] = models.LogEntry{ID: int64(len(actions) - i), Action: a}
	}

	return out
}

func TestSummarize_Scenario(t *testing.T) {
	got := Summarize(entries("API_GET", "INSERT_RECORD"), nil)

	assert.Equal(t, 1, got.APICalls)
	assert.Equal(t, 1, got.DataChanges)
	assert.Equal(t, 2, got.Window)
	assert.NotNil(t, got.TopEndpoints)
}

func TestSummarize_Consistency(t *testing.T) {
	page := entries("API_GET", "API_POST", "LOGIN", "UPDATE_RECORD", "DELETE_RECORD", "API_", "EXPORT", "api_get")
	got := Summarize(page, nil)

	var nonAPI int
	for _, e := range page {
		if !strings.HasPrefix(e.Action, "API_") {
			nonAPI++
		}
	}

	assert.Equal(t, len(page), got.APICalls+nonAPI)
	assert.LessOrEqual(t, got.DataChanges, len(page))
	assert.Equal(t, 3, got.APICalls)
	assert.Equal(t, 2, got.DataChanges)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, nil)

	assert.Equal(t, models.Stats{TopEndpoints: []models.EndpointCount{}}, got)
}

func TestSummarize_TopEndpointsPassThrough(t *testing.T) {
	top := []models.EndpointCount{{Action: "API_GET", Count: 500}}

	got := Summarize(entries("API_GET"), top)

	assert.Equal(t, top, got.TopEndpoints, "aggregate is not derived from the page")
}
