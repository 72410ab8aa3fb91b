package seed

import (
	"fmt"
	"log"

	"instakilo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder orchestrates bulk data generation on top of the Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		opts:    opts,
	}
}

// ClearAll truncates every seeded table. Postgres only.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, saved_posts, follows, stories, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// DemoAccounts creates a small set of fixed accounts so the app is usable
// immediately after seeding. Idempotent: existing usernames are kept.
func DemoAccounts(db *gorm.DB) error {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	accounts := []models.User{
		{Username: "demo", Email: "demo@instakilo.dev", Bio: "The demo account.", IsAdmin: false},
		{Username: "kiloadmin", Email: "admin@instakilo.dev", Bio: "Keeping the lights on.", IsAdmin: true},
		{Username: "testuser", Email: "test@instakilo.dev", Bio: "For poking at the API."},
	}

	for i := range accounts {
		accounts[i].Password = string(hashedPassword)
		accounts[i].Avatar = fmt.Sprintf("https://i.pravatar.cc/150?u=%s", accounts[i].Username)

		var existing models.User
		err := db.Where("username = ?", accounts[i].Username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&accounts[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSocialMesh creates users and a follow graph between them. Each user
// follows a random slice of the others; nobody follows themselves.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	log.Printf("🌱 Seeding %d users...", numUsers)

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("skipping user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	if s.opts.DryRun || len(users) < 2 {
		return users, nil
	}

	log.Println("🔗 Building follow graph...")
	edges := 0
	for _, follower := range users {
		// Follow 10-30% of the network.
		count := len(users)/10 + s.factory.rand.Intn(len(users)/5+1)
		for j := 0; j < count; j++ {
			followee := users[s.factory.rand.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, followee); err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
			edges++
		}
	}
	log.Printf("✓ %d users, ~%d follow edges", len(users), edges)

	return users, nil
}

// SeedEngagement creates posts for the given users plus likes, comments,
// saves and stories around them.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attach posts to")
	}

	log.Printf("🌱 Seeding %d posts...", numPosts)
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rand.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}

	if s.opts.DryRun {
		return posts, nil
	}

	log.Println("❤️  Seeding likes, comments and saves...")
	for _, post := range posts {
		likers := s.factory.rand.Intn(len(users)/2 + 1)
		for j := 0; j < likers; j++ {
			user := users[s.factory.rand.Intn(len(users))]
			if err := s.factory.CreateLike(user, post); err != nil {
				return nil, fmt.Errorf("create like: %w", err)
			}
		}

		commenters := s.factory.rand.Intn(6)
		for j := 0; j < commenters; j++ {
			user := users[s.factory.rand.Intn(len(users))]
			if _, err := s.factory.CreateComment(user, post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
		}

		if s.factory.rand.Float32() < 0.2 {
			user := users[s.factory.rand.Intn(len(users))]
			if err := s.factory.CreateSave(user, post); err != nil {
				return nil, fmt.Errorf("create save: %w", err)
			}
		}
	}

	log.Println("📸 Seeding stories...")
	for _, user := range users {
		if s.factory.rand.Float32() < 0.3 {
			if _, err := s.factory.CreateStory(user); err != nil {
				return nil, fmt.Errorf("create story: %w", err)
			}
		}
	}

	log.Printf("✓ %d posts with engagement", len(posts))
	return posts, nil
}

// ApplyPreset runs a named seeding profile.
func (s *Seeder) ApplyPreset(name string) error {
	switch name {
	case "Tiny":
		users, err := s.SeedSocialMesh(10)
		if err != nil {
			return err
		}
		_, err = s.SeedEngagement(users, 30)
		return err
	case "MegaPopulated":
		users, err := s.SeedSocialMesh(500)
		if err != nil {
			return err
		}
		_, err = s.SeedEngagement(users, 5000)
		return err
	default:
		return fmt.Errorf("unknown preset %q", name)
	}
}
