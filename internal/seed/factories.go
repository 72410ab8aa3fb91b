// Package seed provides helpers to create demo and test data for the
// application database. Development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"instakilo/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures the seeder.
type Options struct {
	// SkipBcrypt stores a plaintext placeholder password instead of a real
	// hash. Orders of magnitude faster when seeding thousands of users.
	SkipBcrypt bool
	// DryRun builds entities and assigns synthetic IDs without touching
	// the database.
	DryRun bool
	// MaxDays is how far back post timestamps are spread. Defaults to 90.
	MaxDays int
}

// Factory builds domain entities and persists them. It is a thin helper
// used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
	// synthetic ID counter for DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	return &Factory{
		db:     db,
		opts:   opts,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post without persisting it, with the author
// snapshot filled in and a created_at spread over the recent past.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	mediaType := models.MediaTypeImage
	mediaURL := fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", gofakeit.UUID())
	if f.rand.Float32() < 0.15 {
		mediaType = models.MediaTypeVideo
		mediaURL = fmt.Sprintf("https://cdn.instakilo.dev/videos/%s.mp4", gofakeit.UUID())
	}

	post := &models.Post{
		Caption:       gofakeit.Sentence(f.rand.Intn(18) + 2),
		MediaURL:      mediaURL,
		MediaType:     mediaType,
		UserID:        user.ID,
		OwnerUsername: user.Username,
		OwnerAvatar:   user.Avatar,
		CreatedAt:     f.spreadTimestamp(),
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d type=%s", post.UserID, post.MediaType)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment persists a comment on the post authored by the user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(f.rand.Intn(10) + 2),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post. Repeats are swallowed by
// the same conflict clause the API uses.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(like).Error
}

// CreateSave persists a saved-post row from user on post.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	saved := &models.SavedPost{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(saved).Error
}

// CreateFollow persists a follower -> followee edge.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	follow := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	return f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
		DoNothing: true,
	}).Create(follow).Error
}

// CreateStory persists an unexpired story for the user.
func (f *Factory) CreateStory(user *models.User, overrides ...func(*models.Story)) (*models.Story, error) {
	createdAt := time.Now().Add(-time.Duration(f.rand.Intn(20)) * time.Hour)
	story := &models.Story{
		UserID:    user.ID,
		MediaURL:  fmt.Sprintf("https://picsum.photos/seed/story-%s/1080/1920", gofakeit.UUID()),
		MediaType: models.MediaTypeImage,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(models.StoryTTL),
	}

	for _, override := range overrides {
		override(story)
	}

	if err := f.db.Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

func (f *Factory) spreadTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack) * 24 * time.Hour).
		Add(-time.Duration(hoursBack) * time.Hour).
		Add(-time.Duration(minsBack) * time.Minute)
}
