package feed

import (
	"strings"

	"github.com/lysyi3m/teamfeed/app/database"
)

// Matcher compares names case-insensitively using Unicode case folding. Scans return the
// first match in the order the slice is given.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

func (m *Matcher) Equal(a, b string) bool {
	return fold(a) == fold(b)
}

// Contains reports whether the trimmed pattern occurs in text. Blank patterns never match.
func (m *Matcher) Contains(text, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	return strings.Contains(fold(text), fold(pattern))
}

func (m *Matcher) ClientNamed(clients []database.Client, name string) *database.Client {
	for i := range clients {
		if m.Equal(clients[i].Name, name) {
			return &clients[i]
		}
	}
	return nil
}

func (m *Matcher) ClientIn(clients []database.Client, text string) *database.Client {
	for i := range clients {
		if m.Contains(text, clients[i].Name) {
			return &clients[i]
		}
	}
	return nil
}

func (m *Matcher) ProjectNamed(projects []database.Project, name string) *database.Project {
	for i := range projects {
		if m.Equal(projects[i].Name, name) {
			return &projects[i]
		}
	}
	return nil
}

// ProjectIn scans for a project name inside text, limited to one client's projects when
// clientID is set.
func (m *Matcher) ProjectIn(projects []database.Project, text string, clientID *int64) *database.Project {
	for i := range projects {
		if clientID != nil && projects[i].ClientID != *clientID {
			continue
		}
		if m.Contains(text, projects[i].Name) {
			return &projects[i]
		}
	}
	return nil
}

func fold(s string) string {
	return database.FoldName(s)
}
