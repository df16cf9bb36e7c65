package models

import "context"

// WebSearcher looks up live information for a query. Implementations never
// fail: errors are logged and an empty string is returned.
type WebSearcher interface {
	Search(ctx context.Context, query string) string
}
