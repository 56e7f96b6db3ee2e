package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/testutil"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/stretchr/testify/suite"
)

type TaskServiceTestSuite struct {
	suite.Suite
	env     *serviceTestEnv
	service *TaskService
	ctx     context.Context

	admin   *models.User
	org     *models.Organization
	project *models.Project
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.env = setupServiceTestEnv(s.T())
	s.service = NewTaskService(s.env.taskRepo, s.env.projectRepo, s.env.userRepo, nil)
	s.ctx = context.Background()

	s.admin = testutil.CreateUser(s.T(), s.env.db, "Ada", "ada@acme.test")
	s.org = testutil.CreateOrganization(s.T(), s.env.db, s.admin, "Acme")
	s.project = testutil.CreateProject(s.T(), s.env.db, s.org.ID, "Launch")
}

func (s *TaskServiceTestSuite) TestCreate_DefaultsAndTags() {
	task, err := s.service.Create(s.ctx, CreateTaskInput{
		OrganizationID: s.org.ID,
		Title:          "Write docs",
		ProjectID:      s.project.ID,
		AssignedUserID: &s.admin.ID,
		Tags:           "docs, urgent,docs",
		DueDate:        ptr("2025-04-01"),
	})
	s.Require().NoError(err)

	s.Equal(models.TaskPriorityMedium, task.Priority)
	s.Equal(models.TaskStatusPending, task.Status)
	s.Equal("docs,urgent", task.Tags)
	s.Require().NotNil(task.AssignedUser)
	s.Equal("ada@acme.test", task.AssignedUser.Email)
	s.Require().NotNil(task.DueDate)
}

func (s *TaskServiceTestSuite) TestCreate_Validation() {
	otherOrg := testutil.CreateOrganization(s.T(), s.env.db, testutil.CreateUser(s.T(), s.env.db, "Hank", "hank@globex.test"), "Globex")
	foreignProject := testutil.CreateProject(s.T(), s.env.db, otherOrg.ID, "Foreign")
	outsider := testutil.CreateUser(s.T(), s.env.db, "Eve", "eve@evil.test")

	_, err := s.service.Create(s.ctx, CreateTaskInput{OrganizationID: s.org.ID, Title: "", ProjectID: s.project.ID})
	s.ErrorIs(err, ErrTaskTitleRequired)

	_, err = s.service.Create(s.ctx, CreateTaskInput{OrganizationID: s.org.ID, Title: "x", ProjectID: s.project.ID, Priority: "urgent"})
	s.ErrorIs(err, ErrInvalidPriority)

	_, err = s.service.Create(s.ctx, CreateTaskInput{OrganizationID: s.org.ID, Title: "x", ProjectID: 999})
	s.ErrorIs(err, ErrProjectNotFound)

	_, err = s.service.Create(s.ctx, CreateTaskInput{OrganizationID: s.org.ID, Title: "x", ProjectID: foreignProject.ID})
	s.ErrorIs(err, ErrProjectNotFound)

	_, err = s.service.Create(s.ctx, CreateTaskInput{OrganizationID: s.org.ID, Title: "x", ProjectID: s.project.ID, AssignedUserID: &outsider.ID})
	s.ErrorIs(err, ErrAssigneeNotFound)

	s.Zero(testutil.CountRows(s.T(), s.env.db, &models.Task{}))
}

func (s *TaskServiceTestSuite) TestUpdate() {
	task := testutil.CreateTask(s.T(), s.env.db, s.project.ID, "Draft", "a")

	updated, err := s.service.Update(s.ctx, s.org.ID, task.ID, UpdateTaskInput{
		Title:    "Final",
		Priority: "HIGH",
		Status:   models.TaskStatusCompleted,
		Tags:     ptr("b, c"),
	})
	s.Require().NoError(err)
	s.Equal("Final", updated.Title)
	s.Equal(models.TaskPriorityHigh, updated.Priority)
	s.Equal(models.TaskStatusCompleted, updated.Status)
	s.Equal("b,c", updated.Tags)

	_, err = s.service.Update(s.ctx, s.org.ID, task.ID, UpdateTaskInput{Title: "Final", Priority: "low"})
	s.ErrorIs(err, ErrTaskStatusRequired)
	_, err = s.service.Update(s.ctx, s.org.ID, task.ID, UpdateTaskInput{Title: "Final", Status: "x"})
	s.ErrorIs(err, ErrInvalidPriority)
	_, err = s.service.Update(s.ctx, s.org.ID, 999, UpdateTaskInput{Title: "Final", Priority: "low", Status: "x"})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestStatusListAndDelete() {
	task := testutil.CreateTask(s.T(), s.env.db, s.project.ID, "One", "bug")
	testutil.CreateTask(s.T(), s.env.db, s.project.ID, "Two", "ui")

	updated, err := s.service.UpdateStatus(s.ctx, task.ID, "In Progress")
	s.Require().NoError(err)
	s.Equal("In Progress", updated.Status)

	tasks, total, err := s.service.List(s.ctx, ListTasksInput{
		OrganizationID: s.org.ID,
		Tags:           "bug, missing",
		Page:           utils.PaginationParams{Page: 1, Limit: 10},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(tasks, 1)
	s.Equal(task.ID, tasks[0].ID)

	s.Require().NoError(s.service.Delete(s.ctx, task.ID))
	s.ErrorIs(s.service.Delete(s.ctx, task.ID), ErrTaskNotFound)
	_, err = s.service.UpdateStatus(s.ctx, task.ID, "Done")
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestGenerateTasks_WithoutAI() {
	_, err := s.service.GenerateTasks(s.ctx, s.org.ID, s.project.ID, "anything")
	s.ErrorIs(err, ErrAIServiceNotConfigured)
}

func (s *TaskServiceTestSuite) TestGenerateTasks() {
	content := "```json\n" + `[
		{"title": "Book venue", "description": "for launch", "priority": "high", "due_date": "2025-05-01T12:00:00Z", "tags": ["events"]},
		{"title": "  ", "description": "dropped"},
		{"title": "Send invites", "priority": "whenever"}
	]` + "\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	defer server.Close()

	s.service.aiService = NewAIService("test-key", server.URL+"/v1")

	tasks, err := s.service.GenerateTasks(s.ctx, s.org.ID, s.project.ID, "We need a venue and invitations")
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)

	s.Equal("Book venue", tasks[0].Title)
	s.Equal(models.TaskPriorityHigh, tasks[0].Priority)
	s.Equal("events", tasks[0].Tags)
	s.Require().NotNil(tasks[0].DueDate)
	s.Equal(models.TaskPriorityMedium, tasks[1].Priority)
	s.Equal(int64(2), testutil.CountRows(s.T(), s.env.db, &models.Task{}, "project_id = ?", s.project.ID))
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
