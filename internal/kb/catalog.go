// Package kb implements the knowledge-base lookup: keyword search over a
// static, externally maintained catalog of problem/cause/solution entries.
// The catalog is loaded at query time so edits to the file are picked up
// without a restart.
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// TopicKBQueries is the session topic recording knowledge-base lookups
const TopicKBQueries = "kb_queries"

// Entry is one knowledge-base record
type Entry struct {
	Keywords       []string `json:"keywords"`
	ProblemSummary string   `json:"problem_summary"`
	Causes         []string `json:"causes"`
	Solutions      []string `json:"solutions"`
}

// QueryResult holds the catalog entries matching a keyword query. Found is
// false (with an explanatory message) when nothing matched; an empty match
// set is not an error.
type QueryResult struct {
	Matches []Entry `json:"matches"`
	Found   bool    `json:"found"`
	Message string  `json:"message,omitempty"`
}

// LoadCatalog reads and parses the catalog file. A missing or malformed
// file is a configuration error.
func LoadCatalog(path string) ([]Entry, error) {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return nil, mcperrors.NewConfigError("Invalid knowledge base path: path traversal detected.")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return nil, mcperrors.NewConfigError(fmt.Sprintf("Knowledge base catalog not readable at %s: %v", cleanPath, err))
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, mcperrors.NewConfigError(fmt.Sprintf("Knowledge base catalog at %s is malformed: %v", cleanPath, err))
	}
	return entries, nil
}

// Query searches the catalog for entries whose keywords or problem summary
// contain any of the search keywords (case-insensitive substring match).
// Matches preserve catalog order. The query and its match count are
// recorded under the "kb_queries" topic.
func Query(st *session.State, catalogPath string, keywords []string) (*QueryResult, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			cleaned = append(cleaned, strings.ToLower(strings.TrimSpace(kw)))
		}
	}
	if len(cleaned) == 0 {
		return nil, mcperrors.NewInvalidInput("Search keywords must be a non-empty list of strings.")
	}

	entries, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}

	matches := []Entry{}
	for _, entry := range entries {
		haystack := strings.ToLower(strings.Join(entry.Keywords, " ") + " " + entry.ProblemSummary)
		for _, kw := range cleaned {
			if strings.Contains(haystack, kw) {
				matches = append(matches, entry)
				break
			}
		}
	}

	result := &QueryResult{Matches: matches, Found: len(matches) > 0}
	if !result.Found {
		result.Message = "No knowledge base entries matched the given keywords."
	}

	st.Append(TopicKBQueries, session.Record{
		"keywords":    cleaned,
		"match_count": len(matches),
	})

	return result, nil
}
