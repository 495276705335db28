package fakeapi

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"writex/internal/models"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password123"

// Seed creates n fake users, each with a bio, an avatar and a few posts. The
// same seed value yields the same data.
func (s *Server) Seed(n int, seed int64) ([]models.User, error) {
	faker := gofakeit.New(seed)
	users := make([]models.User, 0, n)

	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", faker.Username(), i)
		email := fmt.Sprintf("%s@writex.test", username)
		user, err := s.CreateUser(username, email, SeedPassword)
		if err != nil {
			return users, fmt.Errorf("seed user %d: %w", i, err)
		}

		user, _ = s.data.updateProfile(user.ID, models.ProfileUpdate{
			Bio:    faker.Sentence(8),
			Avatar: faker.ImageURL(128, 128),
		})

		for j := 0; j < faker.Number(1, 3); j++ {
			s.data.addPost(models.Post{
				ID:        uuid.NewString(),
				Author:    user.Summary(),
				Content:   faker.Sentence(12),
				Likes:     []models.Like{},
				Comments:  []models.Comment{},
				CreatedAt: time.Now().UTC().Add(-time.Duration(faker.Number(1, 72)) * time.Hour),
			})
		}
		users = append(users, user)
	}

	s.logger.Info("seeded fake users", slog.Int("count", len(users)), slog.String("password", SeedPassword))
	return users, nil
}
