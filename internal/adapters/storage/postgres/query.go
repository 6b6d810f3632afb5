package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a free-text query into an ILIKE substring pattern.
// A blank query yields "".
func likePattern(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(q) + "%"
}
