package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/database"
	"github.com/harukimoto/teamtrack-api/internal/dto"
	"github.com/harukimoto/teamtrack-api/internal/middleware"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/harukimoto/teamtrack-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler

	company *models.Company
	user    *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Membership{},
		&models.Team{},
		&models.TeamMembership{},
		&models.Task{},
		&models.TaskResponse{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	companyRepo := repository.NewCompanyRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)
	notifications := services.NewNotificationService(repository.NewNotificationRepository(suite.db))
	taskService := services.NewTaskService(taskRepo, companyRepo, teamRepo, notifications)

	suite.handler = NewTaskHandler(taskService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.company = &models.Company{Name: "Acme"}
	suite.Require().NoError(suite.db.Create(suite.company).Error)

	suite.user = suite.createTestMember("user@acme.test")
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestMember(email string) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)

	membership := &models.Membership{
		CompanyID: suite.company.ID,
		UserID:    user.ID,
		Role:      models.RoleMember,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	suite.Require().NoError(suite.db.Create(membership).Error)

	return user
}

// newRouter builds the task routes with the given user pre-authenticated
func (suite *TaskHandlerTestSuite) newRouter(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
	})

	r.GET("/api/tasks", suite.handler.ListTasks)
	r.POST("/api/tasks", suite.handler.CreateTask)
	r.GET("/api/tasks/:id", middleware.RequireTaskAccess(), suite.handler.GetTask)
	r.PATCH("/api/tasks/:id/status", middleware.RequireTaskAccess(), suite.handler.UpdateStatus)
	r.POST("/api/tasks/:id/responses", middleware.RequireTaskAccess(), suite.handler.AddResponse)
	r.POST("/api/tasks/:id/subtasks", middleware.RequireTaskAccess(), suite.handler.CreateSubtask)
	return r
}

func (suite *TaskHandlerTestSuite) doJSON(r *gin.Engine, method, url string, payload any) *httptest.ResponseRecorder {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		suite.Require().NoError(err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) TestCreateAndGetTask() {
	r := suite.newRouter(suite.user.ID)

	dueDate := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "Ship release",
		"priority":   "High",
		"due_date":   dueDate.Format(time.RFC3339),
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal("Ship release", created.Title)
	suite.Equal(models.TaskPriorityHigh, created.Priority)
	suite.Equal(models.TaskStatusPending, created.Status)
	suite.Require().NotNil(created.DueDate)
	suite.Equal(dueDate.Unix(), created.DueDate.Unix())

	w = suite.doJSON(r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var fetched dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Equal(created.ID, fetched.ID)
	suite.Equal("Ship release", fetched.Title)
	suite.Equal(models.TaskPriorityHigh, fetched.Priority)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"company_id": suite.company.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NonMemberSees404() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "Private",
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	outsider := &models.User{Name: "out", Email: "out@other.test", PasswordHash: "x"}
	suite.Require().NoError(suite.db.Create(outsider).Error)

	// Existence is not leaked to non-members
	otherRouter := suite.newRouter(outsider.ID)
	w = suite.doJSON(otherRouter, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "Status target",
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.doJSON(r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", created.ID), map[string]any{
		"status": "Completed",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal(models.TaskStatusCompleted, updated.Status)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_Invalid() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "Status target",
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.doJSON(r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", created.ID), map[string]any{
		"status": "Done",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAddResponse() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "With activity",
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.doJSON(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/responses", created.ID), map[string]any{
		"comment":     "Worked on it",
		"time_logged": 3.5,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.TaskResponseDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Worked on it", response.Comment)
	suite.InDelta(3.5, response.TimeLogged, 0.001)

	w = suite.doJSON(r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var fetched dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.InDelta(3.5, fetched.ActualHours, 0.001)
}

func (suite *TaskHandlerTestSuite) TestCreateSubtask() {
	r := suite.newRouter(suite.user.ID)

	w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
		"title":      "Parent",
		"company_id": suite.company.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var parent dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &parent))

	w = suite.doJSON(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/subtasks", parent.ID), map[string]any{
		"title": "Child",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var subtask dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &subtask))
	suite.Require().NotNil(subtask.ParentTaskID)
	suite.Equal(parent.ID, *subtask.ParentTaskID)
	suite.Equal(parent.CompanyID, subtask.CompanyID)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	r := suite.newRouter(suite.user.ID)

	for _, title := range []string{"One", "Two", "Three"} {
		w := suite.doJSON(r, http.MethodPost, "/api/tasks", map[string]any{
			"title":      title,
			"company_id": suite.company.ID,
		})
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	w := suite.doJSON(r, http.MethodGet, "/api/tasks?page=1&limit=2", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response.Tasks, 2)
	suite.EqualValues(3, response.TotalCount)
	suite.Equal(2, response.TotalPages)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
