package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL points baseURL at databaseName, keeping any query string
// and defaulting sslmode to disable. An empty databaseName returns baseURL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	url := fmt.Sprintf("%s/%s", base, databaseName)
	if hasQuery && query != "" {
		url += "?" + query
	}

	if !strings.Contains(url, "sslmode=") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "sslmode=disable"
	}
	return url
}
