package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"indierise/internal/domain"
	"indierise/internal/memstore"
	"indierise/internal/service"
	"indierise/pkg/utils"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(u *domain.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List() ([]domain.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(u *domain.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func newIdentityWithMock(t *testing.T) (*service.IdentityService, *MockUserRepository) {
	t.Helper()
	mockRepo := new(MockUserRepository)
	st := memstore.New()
	svc := service.NewIdentityService(mockRepo, st.Books(), st.Promos(), nil, zap.NewNop())
	return svc, mockRepo
}

func TestIdentityService_Register(t *testing.T) {
	svc, mockRepo := newIdentityWithMock(t)

	mockRepo.On("FindByEmail", "new@author.com").Return(nil, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*domain.User")).Return(nil).Once()

	u, err := svc.Register("new@author.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAuthor, u.Role)
	assert.Equal(t, "new", u.Name, "display name derives from the email local part")
	assert.True(t, utils.CheckPassword("secret1", u.PasswordHash))
	mockRepo.AssertExpectations(t)
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	svc, mockRepo := newIdentityWithMock(t)

	mockRepo.On("FindByEmail", "taken@author.com").Return(&domain.User{Email: "taken@author.com"}, nil).Once()
	_, err := svc.Register("taken@author.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	mockRepo.AssertExpectations(t)
}

func TestIdentityService_Register_EmptyFields(t *testing.T) {
	svc, _ := newIdentityWithMock(t)

	_, err := svc.Register("", "secret1")
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	_, err = svc.Register("a@b.com", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
}

func TestIdentityService_RegisterThenAuthenticate(t *testing.T) {
	st := memstore.New()
	svc := service.NewIdentityService(st.Users(), st.Books(), st.Promos(), nil, zap.NewNop())

	_, err := svc.Register("loop@author.com", "pw12345")
	assert.NoError(t, err)

	u, err := svc.Authenticate("loop@author.com", "pw12345")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAuthor, u.Role)
}

func TestIdentityService_Authenticate_WrongPassword(t *testing.T) {
	svc, mockRepo := newIdentityWithMock(t)

	existing := &domain.User{
		Email:        "mary@stockittome.com",
		PasswordHash: utils.HashPassword("indie123"),
		Role:         domain.RoleAdmin,
	}
	mockRepo.On("FindByEmail", "mary@stockittome.com").Return(existing, nil).Twice()

	_, err := svc.Authenticate("mary@stockittome.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	u, err := svc.Authenticate("mary@stockittome.com", "indie123")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	mockRepo.AssertExpectations(t)
}

func TestIdentityService_Authenticate_UnknownEmail(t *testing.T) {
	svc, mockRepo := newIdentityWithMock(t)

	mockRepo.On("FindByEmail", "ghost@nowhere.com").Return(nil, nil).Once()
	_, err := svc.Authenticate("ghost@nowhere.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestIdentityService_UpdateProfile_ReauthRequired(t *testing.T) {
	st := memstore.New()
	svc := service.NewIdentityService(st.Users(), st.Books(), st.Promos(), nil, zap.NewNop())

	_, err := svc.Register("edit@author.com", "goodpw1")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile("edit@author.com", "badpw", "New Name")
	assert.ErrorIs(t, err, domain.ErrReauthRequired)

	// 原状态保持不变
	u, _ := svc.FindByEmail("edit@author.com")
	assert.Equal(t, "edit", u.Name)

	u, err = svc.UpdateProfile("edit@author.com", "goodpw1", "New Name")
	assert.NoError(t, err)
	assert.Equal(t, "New Name", u.Name)
}

func TestIdentityService_Remove_CascadesBooks(t *testing.T) {
	st := memstore.New()
	svc := service.NewIdentityService(st.Users(), st.Books(), st.Promos(), nil, zap.NewNop())
	catalog := service.NewCatalogService(st.Books(), nil, zap.NewNop())

	author, err := svc.Register("bad@actor.com", "pw12345")
	assert.NoError(t, err)
	other, err := svc.Register("good@actor.com", "pw12345")
	assert.NoError(t, err)

	for _, title := range []string{"One", "Two"} {
		_, err := catalog.Submit(service.SubmitInput{
			Title: title, Description: "d", AgreePolicy: true,
		}, author)
		assert.NoError(t, err)
	}
	_, err = catalog.Submit(service.SubmitInput{
		Title: "Keep", Description: "d", AgreePolicy: true,
	}, other)
	assert.NoError(t, err)

	assert.NoError(t, svc.Remove("bad@actor.com"))

	owned, _ := catalog.ListOwned("bad@actor.com")
	assert.Empty(t, owned, "removal cascades to all owned books")
	kept, _ := catalog.ListOwned("good@actor.com")
	assert.Len(t, kept, 1)

	assert.ErrorIs(t, svc.Remove("bad@actor.com"), domain.ErrNotFound)
}

func TestIdentityService_Remove_InvalidatesPublicCatalog(t *testing.T) {
	st := memstore.New()
	fc := newFakeCache()
	svc := service.NewIdentityService(st.Users(), st.Books(), st.Promos(), fc, zap.NewNop())
	catalog := service.NewCatalogService(st.Books(), fc, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register("test@author.com", "test123")
	assert.NoError(t, err)
	b, err := catalog.Submit(service.SubmitInput{
		Title: "Moonbeam", Description: "d", AgreePolicy: true,
	}, author)
	assert.NoError(t, err)
	_, err = catalog.Approve(b.ID)
	assert.NoError(t, err)

	public, _ := catalog.ListPublic(ctx)
	assert.Len(t, public, 1)

	// 删号级联删书后公共书架立刻反映，不等 TTL
	assert.NoError(t, svc.Remove("test@author.com"))
	public, _ = catalog.ListPublic(ctx)
	assert.Empty(t, public)
}
