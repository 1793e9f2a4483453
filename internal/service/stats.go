package service

import "github.com/data2rest/logscope/internal/models"

// Summarize derives page-scoped stats: APICalls and DataChanges count only
// the entries of the fetched page, and Window records how many that was.
// TopEndpoints is passed through from the dedicated aggregate query.
func Summarize(page []models.LogEntry, top []models.EndpointCount) models.Stats {
	stats := models.Stats{
		Window:       len(page),
		TopEndpoints: top,
	}

	if stats.TopEndpoints == nil {
		stats.TopEndpoints = []models.EndpointCount{}
	}

	for _, e := range page {
		if e.IsAPICall() {
			stats.APICalls++
		}
		if e.IsDataChange() {
			stats.DataChanges++
		}
	}

	return stats
}
