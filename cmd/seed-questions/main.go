package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/database"
	"github.com/prepdeck/intervue-backend/internal/logger"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/repository"
)

type seedDomain struct {
	name      string
	questions []seedQuestion
}

type seedQuestion struct {
	text     string
	limitSec int
}

var domains = []seedDomain{
	{
		name: "Backend Engineering",
		questions: []seedQuestion{
			{"Walk me through how you would design a rate limiter for a public API.", 120},
			{"What happens between typing a URL into a browser and the page rendering?", 90},
			{"Explain the difference between optimistic and pessimistic locking, with an example of when you would choose each.", 120},
			{"How do you decide between SQL and NoSQL storage for a new service?", 90},
			{"Describe a production incident you debugged and how you found the root cause.", 180},
		},
	},
	{
		name: "Frontend Engineering",
		questions: []seedQuestion{
			{"How does the browser event loop work, and why does it matter for UI responsiveness?", 90},
			{"Explain how you would make a large list of items render smoothly.", 120},
			{"What strategies do you use to keep a web application accessible?", 90},
			{"Describe how you would structure state management in a mid-sized application.", 120},
		},
	},
	{
		name: "Behavioral",
		questions: []seedQuestion{
			{"Tell me about a time you disagreed with a teammate on a technical decision.", 120},
			{"Describe a project that failed and what you learned from it.", 120},
			{"How do you prioritize when everything feels urgent?", 90},
		},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	domainRepo := repository.NewDomainRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	// Demo admin who owns the seeded domains.
	admin, err := adminRepo.GetByEmail(ctx, "admin@prepdeck.dev")
	if err != nil {
		hash, herr := bcrypt.GenerateFromPassword([]byte("admin123"), cfg.BcryptCost)
		if herr != nil {
			log.Fatal().Err(herr).Msg("Failed to hash admin password")
		}
		admin = &model.Admin{
			Name:         "Demo Admin",
			Email:        "admin@prepdeck.dev",
			PasswordHash: string(hash),
		}
		if err := adminRepo.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo admin")
		}
		fmt.Printf("Created demo admin with ID: %d\n", admin.ID)
	} else {
		fmt.Printf("Found existing demo admin with ID: %d\n", admin.ID)
	}

	// Demo candidate account for local login.
	hash, err := bcrypt.GenerateFromPassword([]byte("candidate123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash candidate password")
	}
	candidate := &model.User{
		Name:         "Demo Candidate",
		Email:        "candidate@prepdeck.dev",
		PasswordHash: string(hash),
	}
	if err := userRepo.Create(ctx, candidate); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Println("Demo candidate already exists, skipping")
		} else {
			log.Fatal().Err(err).Msg("Failed to create demo candidate")
		}
	} else {
		fmt.Printf("Created demo candidate with ID: %d\n", candidate.ID)
	}

	questionCount := 0
	for _, d := range domains {
		domain := &model.Domain{
			Name:    d.name,
			AdminID: admin.ID,
		}
		if err := domainRepo.Create(ctx, domain); err != nil {
			fmt.Printf("Error creating domain %q: %v\n", d.name, err)
			continue
		}
		fmt.Printf("Created domain %q (%s)\n", domain.Name, domain.ID)

		for i, q := range d.questions {
			question := &model.Question{
				DomainID:     domain.ID,
				QuestionText: q.text,
				TimeLimitSec: q.limitSec,
				OrderNum:     i + 1,
			}
			if err := questionRepo.Create(ctx, question); err != nil {
				fmt.Printf("Error creating question %d in %q: %v\n", i+1, d.name, err)
				continue
			}
			questionCount++
		}
	}

	fmt.Printf("\nSeed completed! %d domains, %d questions.\n", len(domains), questionCount)
}
