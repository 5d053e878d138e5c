package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// Testify-based mocks for the store interfaces, used by service tests to
// set per-call expectations with mock.On. WithTx returns the mock itself,
// so transactional flows exercise the same expectations as direct calls.

// TestifyMockUserStore is a mock of store.UserStore for use with testify/mock
type TestifyMockUserStore struct {
	mock.Mock
}

func (m *TestifyMockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *TestifyMockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *TestifyMockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TestifyMockUserStore) DeleteUnverifiedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TestifyMockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// TestifyMockProfileStore is a mock of store.ProfileStore for use with testify/mock
type TestifyMockProfileStore struct {
	mock.Mock
}

func (m *TestifyMockProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *TestifyMockProfileStore) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if profile, ok := args.Get(0).(*domain.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *TestifyMockProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return m
}

// TestifyMockVerificationCodeStore is a mock of store.VerificationCodeStore
// for use with testify/mock
type TestifyMockVerificationCodeStore struct {
	mock.Mock
}

func (m *TestifyMockVerificationCodeStore) Create(
	ctx context.Context,
	code *domain.VerificationCode,
) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *TestifyMockVerificationCodeStore) GetLatest(
	ctx context.Context,
	userID uuid.UUID,
	purpose domain.VerificationPurpose,
) (*domain.VerificationCode, error) {
	args := m.Called(ctx, userID, purpose)
	if code, ok := args.Get(0).(*domain.VerificationCode); ok {
		return code, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockVerificationCodeStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TestifyMockVerificationCodeStore) WithTx(tx *sql.Tx) store.VerificationCodeStore {
	return m
}

// TestifyMockProjectStore is a mock of store.ProjectStore for use with testify/mock
type TestifyMockProjectStore struct {
	mock.Mock
}

func (m *TestifyMockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *TestifyMockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if project, ok := args.Get(0).(*domain.Project); ok {
		return project, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *TestifyMockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TestifyMockProjectStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Project, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	projects, _ := args.Get(0).([]*domain.Project)
	return projects, args.Int(1), args.Error(2)
}

func (m *TestifyMockProjectStore) ListPublic(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Project, int, error) {
	args := m.Called(ctx, offset, limit)
	projects, _ := args.Get(0).([]*domain.Project)
	return projects, args.Int(1), args.Error(2)
}

func (m *TestifyMockProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return m
}

// TestifyMockMemberStore is a mock of store.MemberStore for use with testify/mock
type TestifyMockMemberStore struct {
	mock.Mock
}

func (m *TestifyMockMemberStore) Create(ctx context.Context, member *domain.ProjectMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *TestifyMockMemberStore) Get(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (*domain.ProjectMember, error) {
	args := m.Called(ctx, projectID, userID)
	if member, ok := args.Get(0).(*domain.ProjectMember); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockMemberStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*domain.ProjectMember, error) {
	args := m.Called(ctx, projectID)
	members, _ := args.Get(0).([]*domain.ProjectMember)
	return members, args.Error(1)
}

func (m *TestifyMockMemberStore) UpdateRole(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) error {
	args := m.Called(ctx, projectID, userID, role)
	return args.Error(0)
}

func (m *TestifyMockMemberStore) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *TestifyMockMemberStore) WithTx(tx *sql.Tx) store.MemberStore {
	return m
}

// TestifyMockTaskStore is a mock of store.TaskStore for use with testify/mock
type TestifyMockTaskStore struct {
	mock.Mock
}

func (m *TestifyMockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TestifyMockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TestifyMockTaskStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TestifyMockTaskStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	args := m.Called(ctx, projectID, filter, offset, limit)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

func (m *TestifyMockTaskStore) ListByAssignee(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	args := m.Called(ctx, userID, filter, offset, limit)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

func (m *TestifyMockTaskStore) ListDueSoon(
	ctx context.Context,
	deadline time.Time,
) ([]*domain.Task, error) {
	args := m.Called(ctx, deadline)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TestifyMockTaskStore) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TestifyMockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// TestifyMockInvitationStore is a mock of store.InvitationStore for use with testify/mock
type TestifyMockInvitationStore struct {
	mock.Mock
}

func (m *TestifyMockInvitationStore) Create(
	ctx context.Context,
	invitation *domain.ProjectInvitation,
) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *TestifyMockInvitationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ProjectInvitation, error) {
	args := m.Called(ctx, id)
	if invitation, ok := args.Get(0).(*domain.ProjectInvitation); ok {
		return invitation, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockInvitationStore) Update(
	ctx context.Context,
	invitation *domain.ProjectInvitation,
) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *TestifyMockInvitationStore) ListPendingForUser(
	ctx context.Context,
	inviteeID uuid.UUID,
) ([]*domain.ProjectInvitation, error) {
	args := m.Called(ctx, inviteeID)
	invitations, _ := args.Get(0).([]*domain.ProjectInvitation)
	return invitations, args.Error(1)
}

func (m *TestifyMockInvitationStore) ExpirePendingBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TestifyMockInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return m
}
