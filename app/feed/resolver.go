package feed

import (
	"strings"

	"github.com/lysyi3m/teamfeed/app/database"
)

// ResolveUser maps a mention token to a roster member. The token is compared, ignoring
// case, against the first name, the local part of the email, the first and last name
// run together, and the first and last name separated by a space. The first roster member
// satisfying any of these wins; nil means no assignee.
func ResolveUser(roster []database.User, token string) *database.User {
	token = fold(strings.TrimSpace(token))
	if token == "" {
		return nil
	}

	for _, user := range roster {
		localPart, _, _ := strings.Cut(user.Email, "@")
		candidates := []string{
			user.FirstName,
			localPart,
			user.FirstName + user.LastName,
			user.FirstName + " " + user.LastName,
		}
		for _, candidate := range candidates {
			if fold(candidate) == token {
				return &user
			}
		}
	}

	return nil
}
