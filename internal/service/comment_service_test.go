package service

import (
	"context"
	"strings"
	"testing"

	"instakilo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentValidation(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	svc := NewCommentService(commentRepo, postRepo)

	tests := []struct {
		name    string
		content string
	}{
		{"Empty", ""},
		{"Whitespace Only", "   \n\t"},
		{"Too Long", strings.Repeat("a", 1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(context.Background(), CreateCommentInput{
				UserID:  1,
				PostID:  2,
				Content: tt.content,
			})
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
	commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	svc := NewCommentService(commentRepo, postRepo)

	postRepo.On("Exists", mock.Anything, uint(2)).Return(false, nil)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  1,
		PostID:  2,
		Content: "nice shot",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreateCommentTrimsContent(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	svc := NewCommentService(commentRepo, postRepo)

	postRepo.On("Exists", mock.Anything, uint(2)).Return(true, nil)
	commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
		return c.Content == "nice shot"
	})).Return(nil)

	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  1,
		PostID:  2,
		Content: "  nice shot  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "nice shot", comment.Content)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	svc := NewCommentService(commentRepo, postRepo)

	commentRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Comment{ID: 5, UserID: 1, PostID: 2}, nil)
	commentRepo.On("Delete", mock.Anything, uint(5)).Return(nil)
	postRepo.On("GetByID", mock.Anything, uint(2), uint(0)).
		Return(&models.Post{ID: 2, UserID: 3}, nil)

	// Unrelated user: forbidden.
	err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 9, CommentID: 5})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	// Comment author, post owner, and admin may all delete.
	require.NoError(t, svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 5}))
	require.NoError(t, svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 3, CommentID: 5}))
	require.NoError(t, svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 9, CommentID: 5, IsAdmin: true}))
}
