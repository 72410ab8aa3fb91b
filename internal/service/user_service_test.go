package service

import (
	"context"
	"testing"

	"instakilo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupHashesPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, nil)
	userRepo.On("GetByUsername", mock.Anything, "jane_doe").Return(nil, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Password != "SecurePass12!" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("SecurePass12!")) == nil
	})).Return(nil)

	user, err := svc.Signup(context.Background(), SignupInput{
		Username: "jane_doe",
		Email:    "jane@example.com",
		Password: "SecurePass12!",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", user.Username)
	userRepo.AssertExpectations(t)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "jane@example.com").
		Return(&models.User{ID: 1, Email: "jane@example.com"}, nil)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "jane_doe",
		Email:    "jane@example.com",
		Password: "SecurePass12!",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "jane_doe",
		Email:    "jane@example.com",
		Password: "short",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestLoginDoesNotLeakWhichFieldFailed(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo.On("GetByEmail", mock.Anything, "jane@example.com").
		Return(&models.User{ID: 1, Email: "jane@example.com", Password: string(hashed)}, nil)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	_, wrongPass := svc.Login(context.Background(), LoginInput{Email: "jane@example.com", Password: "WrongPass12!"})
	_, noUser := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "SecurePass12!"})

	require.Error(t, wrongPass)
	require.Error(t, noUser)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLoginSucceeds(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, "jane@example.com").
		Return(&models.User{ID: 1, Email: "jane@example.com", Password: string(hashed)}, nil)

	user, err := svc.Login(context.Background(), LoginInput{Email: "jane@example.com", Password: "SecurePass12!"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
}

func TestFollowYourselfIsRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	err := svc.Follow(context.Background(), 7, 7)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	userRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowMissingUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gormNotFound())

	err := svc.Follow(context.Background(), 7, 99)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
