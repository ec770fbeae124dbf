package feed

import (
	"github.com/lysyi3m/teamfeed/app/database"
)

// Post parsing types

// ParseResult is what the tag grammar recovers from a post. Empty strings mean "unset".
type ParseResult struct {
	GuildName       string
	GuildContext    string
	TitleName       string
	MainAssignee    string
	MainDescription string
	Subtasks        []Subtask
}

type Subtask struct {
	Description  string
	AssigneeName string
	Completed    bool
}

// Resolution types

// Snapshot is the client and project lists as returned by the stores at the start of a
// resolution. "First match" scans walk it in that order (newest first).
type Snapshot struct {
	Clients  []database.Client
	Projects []database.Project
}

type Resolution struct {
	Guild   *database.Guild
	Client  *database.Client
	Project *database.Project
	Link    *database.ProjectGuild
}

func (r *Resolution) GuildID() *int64 {
	if r == nil || r.Guild == nil {
		return nil
	}
	return &r.Guild.ID
}

// ClientID falls back to the project's client when no client was resolved directly.
func (r *Resolution) ClientID() *int64 {
	switch {
	case r == nil:
		return nil
	case r.Client != nil:
		return &r.Client.ID
	case r.Project != nil:
		return &r.Project.ClientID
	default:
		return nil
	}
}

func (r *Resolution) ProjectID() *int64 {
	if r == nil || r.Project == nil {
		return nil
	}
	return &r.Project.ID
}

// Outcome lists what the fan-out created for one post.
type Outcome struct {
	MainTask     *database.Task
	Subtasks     []database.Task
	MentionTasks []database.Task
	Notified     int
}

func (o *Outcome) TaskCount() int {
	if o == nil {
		return 0
	}
	count := len(o.Subtasks) + len(o.MentionTasks)
	if o.MainTask != nil {
		count++
	}
	return count
}

// Seed file types

type Seed struct {
	Team    []SeedMember `yaml:"team"`
	Clients []SeedClient `yaml:"clients"`
	Guilds  []string     `yaml:"guilds"`
}

type SeedMember struct {
	ID        string `yaml:"id"` // generated when empty
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
}

type SeedClient struct {
	Name     string        `yaml:"name"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedProject struct {
	Name        string `yaml:"name"`
	Status      string `yaml:"status"`
	Description string `yaml:"description"`
}
