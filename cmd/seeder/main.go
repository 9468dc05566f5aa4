package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"closetube/internal/config"
	"closetube/internal/model"
	"closetube/internal/normalizer"
	"closetube/internal/repository"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds a local database with groups, users and videos for manual testing.
// Destructive: drops and recreates the tables.
func main() {
	fmt.Println("seeding test data...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("cannot connect to database: %v", err)
	}

	db.Migrator().DropTable(&model.Video{}, &model.Group{}, &model.User{})
	if err := db.AutoMigrate(&model.User{}, &model.Group{}, &model.Video{}); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx := context.Background()
	groupRepo := repository.NewGroupRepository(db)

	groupNames := []string{"family", "friends", "film-club", "work"}
	groupIDs := make([]string, 0, len(groupNames))
	for _, name := range groupNames {
		group := &model.Group{ID: uuid.NewString(), Name: name}
		if err := groupRepo.Create(ctx, group); err != nil {
			log.Fatalf("group seed failed: %v", err)
		}
		groupIDs = append(groupIDs, group.ID)
	}
	fmt.Printf("created %d groups\n", len(groupIDs))

	userCount := 25
	userIDs := make([]string, 0, userCount)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("password hash failed: %v", err)
	}
	for i := 0; i < userCount; i++ {
		user := model.User{
			ID:       uuid.NewString(),
			Username: faker.Username(),
			Password: string(hashedPassword),
		}
		db.Create(&user)
		userIDs = append(userIDs, user.ID)
	}
	fmt.Printf("created %d users\n", userCount)

	rand.Seed(time.Now().UnixNano())
	videoCount := 200
	created := 0
	for i := 0; i < videoCount; i++ {
		rawURL := fmt.Sprintf("https://youtu.be/%s", randomVideoID(11))
		res, err := normalizer.Normalize(rawURL)
		if err != nil {
			continue
		}
		video := model.Video{
			ID:         uuid.NewString(),
			CreatedAt:  time.Now().Add(-time.Duration(rand.Intn(90*24)) * time.Hour),
			GroupID:    groupIDs[rand.Intn(len(groupIDs))],
			Provider:   res.Provider,
			ExternalID: res.ExternalID,
			SourceURL:  rawURL,
			Title:      faker.Sentence(),
			LikeCount:  uint64(rand.Intn(500)),
			UploaderID: userIDs[rand.Intn(len(userIDs))],
		}
		// Random IDs can collide; skip duplicates instead of failing.
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&video)
		if result.Error == nil && result.RowsAffected > 0 {
			created++
		}
	}
	fmt.Printf("created %d videos\n", created)

	fmt.Println("seed complete")
}

func randomVideoID(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
