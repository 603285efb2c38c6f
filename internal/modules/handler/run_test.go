package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) RunPrompt(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.PromptRun, error) {
	args := m.Called(ctx, user, promptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromptRun), args.Error(1)
}

func (m *MockRunService) SendPrompt(ctx context.Context, user *model.User, projectID, promptID uuid.UUID) (*model.PromptRun, error) {
	args := m.Called(ctx, user, projectID, promptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromptRun), args.Error(1)
}

func (m *MockRunService) SendMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (*model.PromptRun, error) {
	args := m.Called(ctx, user, projectID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromptRun), args.Error(1)
}

func (m *MockRunService) StreamMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (<-chan service.StreamEvent, error) {
	args := m.Called(ctx, user, projectID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan service.StreamEvent), args.Error(1)
}

func (m *MockRunService) ListMessages(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.PromptRun, error) {
	args := m.Called(ctx, user, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PromptRun), args.Error(1)
}

func (m *MockRunService) ListByPrompt(ctx context.Context, user *model.User, in service.ListRunsInput) (*service.ListRunsOutput, error) {
	args := m.Called(ctx, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListRunsOutput), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) ProjectAnalytics(ctx context.Context, user *model.User, projectID uuid.UUID) (*service.ProjectAnalytics, error) {
	args := m.Called(ctx, user, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProjectAnalytics), args.Error(1)
}

// withUser injects the resolved caller the way the auth middleware does.
func withUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func testStrPtr(s string) *string { return &s }

func newRunTestRouter(user *model.User, runs *MockRunService, analytics *MockAnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	h := NewRunHandler(runs, analytics)
	r := gin.New()
	r.Use(withUser(user))
	r.POST("/projects/:project_id/send_prompt", h.SendPrompt)
	r.POST("/projects/:project_id/messages", h.SendMessage)
	r.GET("/projects/:project_id/messages", h.GetMessages)
	r.GET("/analytics/projects/:project_id", h.Analytics)
	r.POST("/prompts/:prompt_id/run", h.Run)
	return r
}

func TestSendPromptHandler(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "u@example.com"}
	projectID := uuid.New()
	promptID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(*MockRunService)
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			body: `{"prompt_id":"` + promptID.String() + `"}`,
			setup: func(svc *MockRunService) {
				run := &model.PromptRun{
					ID:         uuid.New(),
					PromptID:   promptID,
					ProjectID:  projectID,
					UserID:     user.ID,
					Status:     model.RunStatusCompleted,
					OutputData: testStrPtr("hello back"),
				}
				svc.On("SendPrompt", mock.Anything, user, projectID, promptID).Return(run, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp serializer.SendPromptResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "hello back", resp.Reply)
				assert.Equal(t, model.RunStatusCompleted, resp.Status)
				assert.NotEqual(t, uuid.Nil, resp.RunID)
			},
		},
		{
			name:           "missing prompt_id",
			body:           `{}`,
			setup:          func(svc *MockRunService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "prompt not in project",
			body: `{"prompt_id":"` + promptID.String() + `"}`,
			setup: func(svc *MockRunService) {
				svc.On("SendPrompt", mock.Anything, user, projectID, promptID).
					Return(nil, service.ErrPromptNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "foreign project",
			body: `{"prompt_id":"` + promptID.String() + `"}`,
			setup: func(svc *MockRunService) {
				svc.On("SendPrompt", mock.Anything, user, projectID, promptID).
					Return(nil, service.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "generation failure",
			body: `{"prompt_id":"` + promptID.String() + `"}`,
			setup: func(svc *MockRunService) {
				svc.On("SendPrompt", mock.Anything, user, projectID, promptID).
					Return(nil, service.ErrGenerationFailed)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := new(MockRunService)
			tt.setup(runs)
			r := newRunTestRouter(user, runs, new(MockAnalyticsService))

			req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID.String()+"/send_prompt", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec)
			}
			runs.AssertExpectations(t)
		})
	}
}

func TestSendMessageRequiresContent(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	r := newRunTestRouter(user, new(MockRunService), new(MockAnalyticsService))

	req := httptest.NewRequest(http.MethodPost, "/projects/"+uuid.NewString()+"/messages", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesBuildsTranscript(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()
	runs := new(MockRunService)
	runs.On("ListMessages", mock.Anything, user, projectID).Return([]*model.PromptRun{
		{ID: uuid.New(), InputData: testStrPtr("hi"), OutputData: testStrPtr("hello")},
		{ID: uuid.New(), InputData: testStrPtr("bye")},
	}, nil)
	r := newRunTestRouter(user, runs, new(MockAnalyticsService))

	req := httptest.NewRequest(http.MethodGet, "/projects/"+projectID.String()+"/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp serializer.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	messages := resp.Data.([]interface{})
	assert.Len(t, messages, 3)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hi", first["content"])
}

func TestRunHandlerRejectsBadUUID(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	r := newRunTestRouter(user, new(MockRunService), new(MockAnalyticsService))

	req := httptest.NewRequest(http.MethodPost, "/prompts/not-a-uuid/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()
	analytics := new(MockAnalyticsService)
	analytics.On("ProjectAnalytics", mock.Anything, user, projectID).Return(&service.ProjectAnalytics{
		ProjectID:   projectID,
		TotalRuns:   2,
		TotalTokens: 1500,
		TotalCost:   0.045,
	}, nil)
	r := newRunTestRouter(user, new(MockRunService), analytics)

	req := httptest.NewRequest(http.MethodGet, "/analytics/projects/"+projectID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp serializer.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total_runs"])
	assert.Equal(t, float64(1500), data["total_tokens"])
}
