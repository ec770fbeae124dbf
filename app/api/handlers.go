package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/teamfeed/app/database"
	"github.com/lysyi3m/teamfeed/app/feed"
)

const maxListLimit = 200

func NewHandler(stores feed.Stores, postRepo database.PostRepository, feedLimit int) *Handler {
	return &Handler{
		userRepo:         stores.Users,
		clientRepo:       stores.Clients,
		guildRepo:        stores.Guilds,
		projectRepo:      stores.Projects,
		linkRepo:         stores.Links,
		taskRepo:         stores.Tasks,
		notificationRepo: stores.Notifications,
		postRepo:         postRepo,
		processor:        feed.NewProcessor(stores),
		generator:        feed.NewGenerator(),
		feedLimit:        feedLimit,
	}
}

func currentUser(c *gin.Context) database.User {
	return c.MustGet(currentUserKey).(database.User)
}

// parseID reads a positive integer path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

// optionalID reads a positive integer query parameter. Absent means nil.
func optionalID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return nil, false
	}
	return &id, true
}

func (h *Handler) limit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return h.feedLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
		return 0, false
	}
	return limit, true
}

func databaseError(c *gin.Context, operation string, err error, args ...any) {
	slog.Error("Database error", append([]any{"operation", operation, "error", err}, args...)...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if users, err := h.userRepo.ListUsers(c.Request.Context()); err == nil {
		health["team_members"] = len(users)
	}

	if clientCount, err := h.clientRepo.GetClientCount(c.Request.Context()); err == nil {
		health["clients"] = clientCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetFeedRSS(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}

	posts, err := h.postRepo.ListPosts(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_users", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	authors := make(map[string]string, len(users))
	for _, user := range users {
		authors[user.ID] = user.DisplayName()
	}

	rss, err := h.generator.Run(posts, authors)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))
	c.String(http.StatusOK, rss)
}

// Posts

func (h *Handler) ListPosts(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}

	posts, err := h.postRepo.ListPosts(c.Request.Context(), limit)
	if err != nil {
		databaseError(c, "list_posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": nonNil(posts), "total": len(posts)})
}

// CreatePost stores the post, then runs the tag pipeline. Pipeline failures are logged and
// do not change the response: the post exists either way.
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	author := currentUser(c)
	post, err := h.postRepo.CreatePost(c.Request.Context(), req.Title, req.Content, author.ID, req.Tags)
	if err != nil {
		databaseError(c, "create_post", err, "author_id", author.ID)
		return
	}

	if _, err := h.processor.Run(c.Request.Context(), post); err != nil {
		slog.Error("Post processing failed", "post_id", post.ID, "error", err)
	}

	c.JSON(http.StatusCreated, post)
}

// Catalog

func (h *Handler) ListTeam(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		databaseError(c, "list_users", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": nonNil(users), "total": len(users)})
}

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.clientRepo.ListClients(c.Request.Context())
	if err != nil {
		databaseError(c, "list_clients", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": nonNil(clients), "total": len(clients)})
}

func (h *Handler) CreateClient(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}

	client, err := h.clientRepo.CreateClient(c.Request.Context(), name)
	if err != nil {
		databaseError(c, "create_client", err, "name", name)
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientRepo.GetClient(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_client", err, "client_id", id)
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	name, ok := bindName(c)
	if !ok {
		return
	}

	client, err := h.clientRepo.UpdateClient(c.Request.Context(), id, name)
	if err != nil {
		databaseError(c, "update_client", err, "client_id", id)
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *Handler) ListGuilds(c *gin.Context) {
	guilds, err := h.guildRepo.ListGuilds(c.Request.Context())
	if err != nil {
		databaseError(c, "list_guilds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"guilds": nonNil(guilds), "total": len(guilds)})
}

// CreateGuild returns the existing guild when the name is already taken in any case.
func (h *Handler) CreateGuild(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}

	guild, err := h.guildRepo.CreateGuild(c.Request.Context(), name)
	if err != nil {
		databaseError(c, "create_guild", err, "name", name)
		return
	}

	c.JSON(http.StatusCreated, guild)
}

func (h *Handler) GetGuild(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	guild, err := h.guildRepo.GetGuild(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_guild", err, "guild_id", id)
		return
	}
	if guild == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Guild not found"})
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *Handler) ListProjects(c *gin.Context) {
	clientID, ok := optionalID(c, "clientId")
	if !ok {
		return
	}

	projects, err := h.projectRepo.ListProjects(c.Request.Context(), clientID)
	if err != nil {
		databaseError(c, "list_projects", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": nonNil(projects), "total": len(projects)})
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectRepo.GetProject(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_project", err, "project_id", id)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	if !h.checkReferences(c, references{ClientID: &req.ClientID}) {
		return
	}

	project, err := h.projectRepo.CreateProject(c.Request.Context(), database.NewProject{
		Name:        req.Name,
		ClientID:    req.ClientID,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		databaseError(c, "create_project", err, "name", req.Name)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject changes only the fields present in the body.
func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name must not be blank"})
			return
		}
		req.Name = &name
	}

	if !h.checkReferences(c, references{ClientID: req.ClientID}) {
		return
	}

	project, err := h.projectRepo.UpdateProject(c.Request.Context(), id, database.ProjectUpdate{
		Name:        req.Name,
		ClientID:    req.ClientID,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		databaseError(c, "update_project", err, "project_id", id)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) ListProjectGuilds(c *gin.Context) {
	projectID, ok := optionalID(c, "projectId")
	if !ok {
		return
	}
	guildID, ok := optionalID(c, "guildId")
	if !ok {
		return
	}

	links, err := h.linkRepo.ListLinks(c.Request.Context(), projectID, guildID)
	if err != nil {
		databaseError(c, "list_project_guilds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project_guilds": nonNil(links), "total": len(links)})
}

// Tasks

func (h *Handler) ListTasks(c *gin.Context) {
	var filter database.TaskFilter
	filter.AssigneeID = c.Query("assigneeId")

	projectID, ok := optionalID(c, "projectId")
	if !ok {
		return
	}
	if projectID != nil {
		filter.ProjectID = *projectID
	}

	clientID, ok := optionalID(c, "clientId")
	if !ok {
		return
	}
	if clientID != nil {
		filter.ClientID = *clientID
	}

	if status := database.TaskStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status parameter"})
			return
		}
		filter.Status = status
	}

	tasks, err := h.taskRepo.ListTasks(c.Request.Context(), filter)
	if err != nil {
		databaseError(c, "list_tasks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": nonNil(tasks), "total": len(tasks)})
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetTask(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_task", err, "task_id", id)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) GetSubtasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetTask(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_task", err, "task_id", id)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	subtasks, err := h.taskRepo.GetSubtasks(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "get_subtasks", err, "task_id", id)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": nonNil(subtasks), "total": len(subtasks)})
}

// CreateTask creates a task by hand. Subtasks may only hang off a top-level task, and the
// assignee is notified unless they created the task themselves.
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	ctx := c.Request.Context()

	refs := references{ClientID: &req.ClientID, ProjectID: req.ProjectID, GuildID: req.GuildID, AssigneeID: req.AssigneeID}
	if !h.checkReferences(c, refs) {
		return
	}

	if req.ParentTaskID != nil {
		parent, err := h.taskRepo.GetTask(ctx, *req.ParentTaskID)
		if err != nil {
			databaseError(c, "get_task", err, "task_id", *req.ParentTaskID)
			return
		}
		if parent == nil || parent.ParentTaskID != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent must be an existing top-level task"})
			return
		}
	}

	creator := currentUser(c)
	task, err := h.taskRepo.CreateTask(ctx, database.NewTask{
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ProjectID:    req.ProjectID,
		ClientID:     req.ClientID,
		AssigneeID:   req.AssigneeID,
		CreatorID:    creator.ID,
		ParentTaskID: req.ParentTaskID,
		GuildID:      req.GuildID,
	})
	if err != nil {
		databaseError(c, "create_task", err)
		return
	}

	if task.AssigneeID != nil && *task.AssigneeID != creator.ID {
		_, err := h.notificationRepo.CreateNotification(ctx, database.NewNotification{
			UserID:       *task.AssigneeID,
			Type:         database.NotificationTypeAssignment,
			Message:      "You were assigned a task: " + task.Description,
			ResourceID:   &task.ID,
			ResourceType: database.ResourceTypeTask,
		})
		if err != nil {
			slog.Error("Failed to create notification", "task_id", task.ID, "user_id", *task.AssigneeID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskRepo.UpdateTaskStatus(c.Request.Context(), id, req.Status)
	if errors.Is(err, database.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if err != nil {
		databaseError(c, "update_task_status", err, "task_id", id)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask changes only the fields present in the body. Setting status done completes
// the parent when it was the last open subtask.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description must not be blank"})
		return
	}

	refs := references{ProjectID: req.ProjectID, GuildID: req.GuildID, AssigneeID: req.AssigneeID}
	if !h.checkReferences(c, refs) {
		return
	}

	task, err := h.taskRepo.UpdateTask(c.Request.Context(), id, database.TaskUpdate{
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		GuildID:     req.GuildID,
	})
	switch {
	case errors.Is(err, database.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	case errors.Is(err, database.ErrInvalidPriority):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	case err != nil:
		databaseError(c, "update_task", err, "task_id", id)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// Notifications

func (h *Handler) ListNotifications(c *gin.Context) {
	user := currentUser(c)

	notifications, err := h.notificationRepo.ListNotifications(c.Request.Context(), user.ID)
	if err != nil {
		databaseError(c, "list_notifications", err, "user_id", user.ID)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": nonNil(notifications),
		"total":         len(notifications),
		"unread":        unread,
	})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	notification, err := h.notificationRepo.MarkNotificationRead(c.Request.Context(), id)
	if err != nil {
		databaseError(c, "mark_notification_read", err, "notification_id", id)
		return
	}
	if notification == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, notification)
}

// references are the foreign keys a request may name. Nil fields are not checked.
type references struct {
	ClientID   *int64
	ProjectID  *int64
	GuildID    *int64
	AssigneeID *string
}

// checkReferences answers 400 for the first reference that names a missing row, so callers
// never reach a foreign-key failure.
func (h *Handler) checkReferences(c *gin.Context, refs references) bool {
	ctx := c.Request.Context()

	if refs.ClientID != nil {
		client, err := h.clientRepo.GetClient(ctx, *refs.ClientID)
		if err != nil {
			databaseError(c, "get_client", err, "client_id", *refs.ClientID)
			return false
		}
		if client == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown client"})
			return false
		}
	}

	if refs.ProjectID != nil {
		project, err := h.projectRepo.GetProject(ctx, *refs.ProjectID)
		if err != nil {
			databaseError(c, "get_project", err, "project_id", *refs.ProjectID)
			return false
		}
		if project == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown project"})
			return false
		}
	}

	if refs.GuildID != nil {
		guild, err := h.guildRepo.GetGuild(ctx, *refs.GuildID)
		if err != nil {
			databaseError(c, "get_guild", err, "guild_id", *refs.GuildID)
			return false
		}
		if guild == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown guild"})
			return false
		}
	}

	if refs.AssigneeID != nil {
		assignee, err := h.userRepo.GetUser(ctx, *refs.AssigneeID)
		if err != nil {
			databaseError(c, "get_user", err, "user_id", *refs.AssigneeID)
			return false
		}
		if assignee == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown assignee"})
			return false
		}
	}

	return true
}

func bindName(c *gin.Context) (string, bool) {
	var req CreateNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return "", false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return "", false
	}
	return name, true
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
