package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/database"
	"github.com/courseloom/courseloom-backend/internal/logger"
	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/repository"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo educator, two students and one published quiz covering every
// question type. Safe to re-run: duplicate emails are skipped.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	quizService := service.NewQuizService(quizRepo, rdb, log)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	users := []*model.User{
		{Name: "Demo Educator", Email: "educator@demo.courseloom.io", Role: model.RoleEducator},
		{Name: "Alice Student", Email: "alice@demo.courseloom.io", Role: model.RoleStudent},
		{Name: "Bob Student", Email: "bob@demo.courseloom.io", Role: model.RoleStudent},
	}

	for _, u := range users {
		u.PasswordHash = string(hash)
		if err := userRepo.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				fmt.Printf("Skipping existing user %s\n", u.Email)
				continue
			}
			log.Fatal().Err(err).Str("email", u.Email).Msg("Failed to seed user")
		}
		fmt.Printf("Seeded %s %s (%s)\n", u.Role, u.Name, u.Email)
	}

	courseID := uuid.New()
	correct := true
	req := &model.CreateQuizRequest{
		CourseID:        courseID,
		Title:           "Cell Biology Checkpoint",
		DurationMinutes: 30,
		PassingScore:    70,
		MaxAttempts:     2,
		Questions: []model.QuestionInput{
			{
				Type:         string(model.QuestionTypeMultipleChoice),
				QuestionText: "Which organelle produces most of the cell's ATP?",
				Points:       2,
				Options: []model.OptionInput{
					{ID: "a", Text: "Nucleus"},
					{ID: "b", Text: "Mitochondrion", IsCorrect: true},
					{ID: "c", Text: "Ribosome"},
					{ID: "d", Text: "Golgi apparatus"},
				},
			},
			{
				Type:         string(model.QuestionTypeTrueFalse),
				QuestionText: "Plant cells have a cell wall.",
				Points:       1,
				CorrectValue: &correct,
			},
			{
				Type:           string(model.QuestionTypeFillBlank),
				QuestionText:   "The process by which plants convert light into chemical energy is called ____.",
				Points:         2,
				CorrectAnswers: []string{"photosynthesis"},
			},
			{
				Type:         string(model.QuestionTypeEssay),
				QuestionText: "Explain the role of the cell membrane in homeostasis.",
				Points:       5,
				MaxWords:     300,
				Rubric:       "Full credit for selective permeability, transport and signaling.",
			},
		},
	}

	quiz, err := quizService.Create(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed quiz")
	}
	if _, err := quizService.Publish(ctx, quiz.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish seeded quiz")
	}

	fmt.Printf("Seeded quiz %q (%s) in course %s\n", quiz.Title, quiz.ID, courseID)
}
