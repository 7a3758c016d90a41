package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobfair-live/internal/domain/user"

	"github.com/google/uuid"
)

// UserWriter is the slice of the user repository the seeder needs.
type UserWriter interface {
	Upsert(ctx context.Context, u *user.User) error
}

// SeedConfig holds configuration for seeding a demo booth
type SeedConfig struct {
	EventID            uuid.UUID
	BoothID            uuid.UUID
	BoothInterpreters  int
	GlobalInterpreters int
	JobSeekers         int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		EventID:            uuid.MustParse("00000000-0000-4000-8000-00000000e001"),
		BoothID:            uuid.MustParse("00000000-0000-4000-8000-00000000b001"),
		BoothInterpreters:  2,
		GlobalInterpreters: 1,
		JobSeekers:         3,
	}
}

// SeedResult holds the users created by Seed
type SeedResult struct {
	Admin        user.User
	Recruiter    user.User
	Interpreters []user.User
	JobSeekers   []user.User
}

// Seed writes a demo directory: one admin, one recruiter for the booth and
// the configured number of interpreters and job seekers.
func Seed(ctx context.Context, repo UserWriter, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	booth := uuid.NullUUID{UUID: cfg.BoothID, Valid: true}
	event := uuid.NullUUID{UUID: cfg.EventID, Valid: true}
	now := time.Now().UTC()

	mk := func(name string, role user.Role, booth uuid.NullUUID) user.User {
		return user.User{
			ID:        uuid.New(),
			Name:      name,
			Email:     fmt.Sprintf("%s@jobfair.local", uuid.NewString()[:8]),
			Role:      role,
			BoothID:   booth,
			EventID:   event,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	result := &SeedResult{
		Admin:     mk("Event Admin", user.RoleAdmin, uuid.NullUUID{}),
		Recruiter: mk("Booth Recruiter", user.RoleRecruiter, booth),
	}
	for i := 0; i < cfg.BoothInterpreters; i++ {
		result.Interpreters = append(result.Interpreters, mk(fmt.Sprintf("Booth Interpreter %d", i+1), user.RoleInterpreter, booth))
	}
	for i := 0; i < cfg.GlobalInterpreters; i++ {
		result.Interpreters = append(result.Interpreters, mk(fmt.Sprintf("Global Interpreter %d", i+1), user.RoleGlobalInterpreter, uuid.NullUUID{}))
	}
	for i := 0; i < cfg.JobSeekers; i++ {
		result.JobSeekers = append(result.JobSeekers, mk(fmt.Sprintf("Job Seeker %d", i+1), user.RoleJobSeeker, uuid.NullUUID{}))
	}

	all := append([]user.User{result.Admin, result.Recruiter}, result.Interpreters...)
	all = append(all, result.JobSeekers...)
	for i := range all {
		if err := repo.Upsert(ctx, &all[i]); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", all[i].Name, err)
		}
		log.Printf("seeded %s %s (%s)", all[i].Role, all[i].ID, all[i].Name)
	}
	return result, nil
}
