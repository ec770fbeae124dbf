package feed

import (
	"context"
	"slices"
	"time"

	"github.com/lysyi3m/teamfeed/app/database"
)

// MockStore is an in-memory stand-in for every repository the pipeline touches.
// List calls return newest first, like the SQLite stores.
type MockStore struct {
	users         []database.User
	clients       []database.Client
	guilds        []database.Guild
	projects      []database.Project
	links         []database.ProjectGuild
	tasks         []database.Task
	notifications []database.Notification
	nextID        int64

	createTaskErr         error
	failTaskAfter         int // CreateTask fails once this many tasks exist; 0 disables
	createNotificationErr error
	createClientCalls     int
	createGuildCalls      int
	createProjectCalls    int
}

var (
	_ database.UserRepository         = (*MockStore)(nil)
	_ database.ClientRepository       = (*MockStore)(nil)
	_ database.GuildRepository        = (*MockStore)(nil)
	_ database.ProjectRepository      = (*MockStore)(nil)
	_ database.ProjectGuildRepository = (*MockStore)(nil)
	_ database.TaskRepository         = (*MockStore)(nil)
	_ database.NotificationRepository = (*MockStore)(nil)
)

func (m *MockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockStore) stores() Stores {
	return Stores{
		Users:         m,
		Clients:       m,
		Guilds:        m,
		Projects:      m,
		Links:         m,
		Tasks:         m,
		Notifications: m,
	}
}

func newestFirst[T any](items []T) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	return out
}

func (m *MockStore) ListUsers(ctx context.Context) ([]database.User, error) {
	return slices.Clone(m.users), nil
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*database.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MockStore) UpsertUser(ctx context.Context, user database.User) error {
	for i := range m.users {
		if m.users[i].ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *MockStore) ListClients(ctx context.Context) ([]database.Client, error) {
	return newestFirst(m.clients), nil
}

func (m *MockStore) GetClient(ctx context.Context, id int64) (*database.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockStore) GetClientCount(ctx context.Context) (int, error) {
	return len(m.clients), nil
}

func (m *MockStore) CreateClient(ctx context.Context, name string) (*database.Client, error) {
	m.createClientCalls++
	c := database.Client{ID: m.id(), Name: name, CreatedAt: time.Now()}
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *MockStore) UpdateClient(ctx context.Context, id int64, name string) (*database.Client, error) {
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients[i].Name = name
			return &m.clients[i], nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListGuilds(ctx context.Context) ([]database.Guild, error) {
	return newestFirst(m.guilds), nil
}

func (m *MockStore) GetGuild(ctx context.Context, id int64) (*database.Guild, error) {
	for _, g := range m.guilds {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, nil
}

func (m *MockStore) GetGuildByName(ctx context.Context, name string) (*database.Guild, error) {
	for _, g := range m.guilds {
		if database.FoldName(g.Name) == database.FoldName(name) {
			return &g, nil
		}
	}
	return nil, nil
}

func (m *MockStore) CreateGuild(ctx context.Context, name string) (*database.Guild, error) {
	m.createGuildCalls++
	if g, _ := m.GetGuildByName(ctx, name); g != nil {
		return g, nil
	}
	g := database.Guild{ID: m.id(), Name: name, CreatedAt: time.Now()}
	m.guilds = append(m.guilds, g)
	return &g, nil
}

func (m *MockStore) ListProjects(ctx context.Context, clientID *int64) ([]database.Project, error) {
	var projects []database.Project
	for _, p := range m.projects {
		if clientID == nil || p.ClientID == *clientID {
			projects = append(projects, p)
		}
	}
	return newestFirst(projects), nil
}

func (m *MockStore) GetProject(ctx context.Context, id int64) (*database.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MockStore) CreateProject(ctx context.Context, project database.NewProject) (*database.Project, error) {
	m.createProjectCalls++
	p := database.Project{
		ID:          m.id(),
		Name:        project.Name,
		ClientID:    project.ClientID,
		Status:      project.Status,
		Description: project.Description,
		CreatedAt:   time.Now(),
	}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *MockStore) UpdateProject(ctx context.Context, id int64, update database.ProjectUpdate) (*database.Project, error) {
	for i := range m.projects {
		p := &m.projects[i]
		if p.ID != id {
			continue
		}
		if update.Name != nil {
			p.Name = *update.Name
		}
		if update.ClientID != nil {
			p.ClientID = *update.ClientID
		}
		if update.Status != nil {
			p.Status = *update.Status
		}
		if update.Description != nil {
			p.Description = *update.Description
		}
		return p, nil
	}
	return nil, nil
}

func (m *MockStore) ListLinks(ctx context.Context, projectID, guildID *int64) ([]database.ProjectGuild, error) {
	var links []database.ProjectGuild
	for _, l := range m.links {
		if (projectID == nil || l.ProjectID == *projectID) && (guildID == nil || l.GuildID == *guildID) {
			links = append(links, l)
		}
	}
	return links, nil
}

func (m *MockStore) CreateOrGetLink(ctx context.Context, projectID, guildID int64) (*database.ProjectGuild, error) {
	for _, l := range m.links {
		if l.ProjectID == projectID && l.GuildID == guildID {
			return &l, nil
		}
	}
	l := database.ProjectGuild{ID: m.id(), ProjectID: projectID, GuildID: guildID}
	m.links = append(m.links, l)
	return &l, nil
}

func (m *MockStore) GetTask(ctx context.Context, id int64) (*database.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListTasks(ctx context.Context, filter database.TaskFilter) ([]database.Task, error) {
	var tasks []database.Task
	for _, t := range m.tasks {
		if t.ParentTaskID == nil {
			tasks = append(tasks, t)
		}
	}
	return newestFirst(tasks), nil
}

func (m *MockStore) GetSubtasks(ctx context.Context, parentTaskID int64) ([]database.Task, error) {
	var tasks []database.Task
	for _, t := range m.tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == parentTaskID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (m *MockStore) CreateTask(ctx context.Context, task database.NewTask) (*database.Task, error) {
	if m.createTaskErr != nil && len(m.tasks) >= m.failTaskAfter {
		return nil, m.createTaskErr
	}
	t := database.Task{
		ID:           m.id(),
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		ProjectID:    task.ProjectID,
		ClientID:     task.ClientID,
		AssigneeID:   task.AssigneeID,
		CreatorID:    task.CreatorID,
		ParentTaskID: task.ParentTaskID,
		GuildID:      task.GuildID,
		CreatedAt:    time.Now(),
	}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *MockStore) UpdateTask(ctx context.Context, id int64, update database.TaskUpdate) (*database.Task, error) {
	for i := range m.tasks {
		t := &m.tasks[i]
		if t.ID != id {
			continue
		}
		if update.Description != nil {
			t.Description = *update.Description
		}
		if update.Status != nil {
			t.Status = *update.Status
		}
		if update.Priority != nil {
			t.Priority = *update.Priority
		}
		if update.AssigneeID != nil {
			t.AssigneeID = update.AssigneeID
		}
		return t, nil
	}
	return nil, nil
}

func (m *MockStore) UpdateTaskStatus(ctx context.Context, id int64, status database.TaskStatus) (*database.Task, error) {
	return m.UpdateTask(ctx, id, database.TaskUpdate{Status: &status})
}

func (m *MockStore) ListNotifications(ctx context.Context, userID string) ([]database.Notification, error) {
	var notifications []database.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	return newestFirst(notifications), nil
}

func (m *MockStore) CreateNotification(ctx context.Context, notification database.NewNotification) (*database.Notification, error) {
	if m.createNotificationErr != nil {
		return nil, m.createNotificationErr
	}
	n := database.Notification{
		ID:           m.id(),
		UserID:       notification.UserID,
		Type:         notification.Type,
		Message:      notification.Message,
		ResourceID:   notification.ResourceID,
		ResourceType: notification.ResourceType,
		CreatedAt:    time.Now(),
	}
	m.notifications = append(m.notifications, n)
	return &n, nil
}

func (m *MockStore) MarkNotificationRead(ctx context.Context, id int64) (*database.Notification, error) {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Read = true
			return &m.notifications[i], nil
		}
	}
	return nil, nil
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func testRoster() []database.User {
	return []database.User{
		{ID: "u-praveen", FirstName: "Praveen", LastName: "Kumar", Email: "pk@studio.test"},
		{ID: "u-alice", FirstName: "Alice", LastName: "Smith", Email: "alice.smith@studio.test"},
		{ID: "u-bob", FirstName: "Bob", LastName: "Stone", Email: "bstone@studio.test"},
	}
}
