package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/infra/llm"
	"github.com/promptdeck/promptdeck/internal/modules/model"
)

func errRecordNotFound() error { return gorm.ErrRecordNotFound }

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetByName(ctx context.Context, name string) (*model.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Project, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockPromptRepo is a mock implementation of repo.PromptRepo
type MockPromptRepo struct {
	mock.Mock
}

func (m *MockPromptRepo) Create(ctx context.Context, p *model.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Prompt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prompt), args.Error(1)
}

func (m *MockPromptRepo) GetInProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID) (*model.Prompt, error) {
	args := m.Called(ctx, id, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prompt), args.Error(1)
}

func (m *MockPromptRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Prompt, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Prompt), args.Error(1)
}

func (m *MockPromptRepo) Update(ctx context.Context, p *model.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjectFileRepo is a mock implementation of repo.ProjectFileRepo
type MockProjectFileRepo struct {
	mock.Mock
}

func (m *MockProjectFileRepo) Create(ctx context.Context, f *model.ProjectFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockProjectFileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectFile, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProjectFile), args.Error(1)
}

func (m *MockProjectFileRepo) SetStorageKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// MockPromptRunRepo is a mock implementation of repo.PromptRunRepo
type MockPromptRunRepo struct {
	mock.Mock
}

func (m *MockPromptRunRepo) Create(ctx context.Context, run *model.PromptRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockPromptRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.PromptRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromptRun), args.Error(1)
}

func (m *MockPromptRunRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.PromptRun, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PromptRun), args.Error(1)
}

func (m *MockPromptRunRepo) ListByPrompt(ctx context.Context, promptID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.PromptRun, error) {
	args := m.Called(ctx, promptID, afterCreatedAt, afterID, limit, timeDesc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PromptRun), args.Error(1)
}

func (m *MockPromptRunRepo) SetInputTokens(ctx context.Context, id uuid.UUID, tokens int) error {
	args := m.Called(ctx, id, tokens)
	return args.Error(0)
}

func (m *MockPromptRunRepo) MarkCompleted(ctx context.Context, id uuid.UUID, output string, tokens *int64, cost float64) error {
	args := m.Called(ctx, id, output, tokens, cost)
	return args.Error(0)
}

func (m *MockPromptRunRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFileStore is a mock implementation of FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockFileStore) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Complete(ctx context.Context, prompt string, maxTokens int64) (*llm.Completion, error) {
	args := m.Called(ctx, prompt, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

func (m *MockGenerator) Stream(ctx context.Context, prompt string) (llm.DeltaStream, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(llm.DeltaStream), args.Error(1)
}

// fakeStream is a canned llm.DeltaStream
type fakeStream struct {
	deltas []string
	pos    int
	err    error
	closed bool
}

func (f *fakeStream) Next() bool {
	if f.pos < len(f.deltas) {
		f.pos++
		return true
	}
	return false
}

func (f *fakeStream) Delta() string { return f.deltas[f.pos-1] }
func (f *fakeStream) Err() error    { return f.err }
func (f *fakeStream) Close() error  { f.closed = true; return nil }

// recordingReporter collects reported errors for assertions.
type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}
