package storage

import (
	"fmt"
	"strings"
)

// RunFolderPath generates a consistent bucket prefix for one study run.
// Format: city/StartDate_EndDate, e.g. "rome/2024-01-01_2024-12-31"
func RunFolderPath(city, startDate, endDate string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(city), " ", "-"))
	if slug == "" {
		slug = "city"
	}
	return fmt.Sprintf("%s/%s_%s", slug, startDate, endDate)
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	if strings.HasSuffix(filename, ".csv") {
		return "text/csv"
	} else if strings.HasSuffix(filename, ".json") {
		return "application/json"
	} else if strings.HasSuffix(filename, ".txt") {
		return "text/plain"
	} else if strings.HasSuffix(filename, ".html") {
		return "text/html"
	} else if strings.HasSuffix(filename, ".md") {
		return "text/markdown"
	} else if strings.HasSuffix(filename, ".png") {
		return "image/png"
	} else if strings.HasSuffix(filename, ".jpg") || strings.HasSuffix(filename, ".jpeg") {
		return "image/jpeg"
	} else {
		return "application/octet-stream"
	}
}
