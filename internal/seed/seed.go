// Package seed fills the database with fake schools and students. Every record
// goes through the store, so generated students obey the registration rules
// and a full school simply rejects the surplus.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"school-service/internal/model"
	"school-service/internal/rules"
	"school-service/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

// Options controls how much data is generated
type Options struct {
	Schools  int
	Students int
	// Seed makes a run reproducible; zero picks a random seed
	Seed int64
}

// Result counts what a run produced
type Result struct {
	Schools  int
	Students int
	Rejected int
	// Skipped counts schools given up on after every candidate name was taken
	Skipped int
}

// nameAttempts bounds the retries for a school whose generated name is taken
const nameAttempts = 5

var titles = []string{string(model.TitleMr), string(model.TitleMrs), string(model.TitleMiss), string(model.TitleMs)}

// Run creates opts.Schools schools and then tries to register opts.Students
// students spread across them. Students refused for capacity are counted in
// Result.Rejected; any other failure aborts the run.
func Run(ctx context.Context, s *store.Store, opts Options, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	faker := gofakeit.New(opts.Seed)

	var res Result
	schools := make([]*model.School, 0, opts.Schools)
	for i := 0; i < opts.Schools; i++ {
		school, err := createSchool(ctx, s, faker)
		if err != nil {
			var dup *store.DuplicateNameError
			if errors.As(err, &dup) {
				log.Warn("Skipping school, no free name", zap.String("name", dup.Name))
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to seed school %d: %w", i, err)
		}
		schools = append(schools, school)
		res.Schools++
	}

	for i := 0; i < opts.Students; i++ {
		var schoolID *uint
		if len(schools) > 0 {
			schoolID = &schools[faker.Number(0, len(schools)-1)].ID
		}
		_, err := s.CreateStudent(ctx, store.StudentFields{
			Title:     model.Title(faker.RandomString(titles)),
			FirstName: truncate(faker.FirstName(), 20),
			LastName:  truncate(faker.LastName(), 20),
			Age:       faker.Number(rules.MinimumAge, rules.MaximumAge),
			Gender:    model.Gender(faker.RandomString([]string{string(model.GenderMale), string(model.GenderFemale)})),
		}, schoolID)
		if err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) && verr.Rule == rules.RuleCapacity {
				res.Rejected++
				continue
			}
			return res, fmt.Errorf("failed to seed student %d: %w", i, err)
		}
		res.Students++
	}

	log.Info("Seed completed",
		zap.Int("schools", res.Schools),
		zap.Int("students", res.Students),
		zap.Int("rejected", res.Rejected),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// createSchool creates one fake school, drawing a new name while the
// generated one is already taken by an earlier run.
func createSchool(ctx context.Context, s *store.Store, faker *gofakeit.Faker) (*model.School, error) {
	var err error
	for attempt := 0; attempt < nameAttempts; attempt++ {
		var school *model.School
		school, err = s.CreateSchool(ctx, store.SchoolFields{
			Name:             schoolName(faker),
			Code:             fmt.Sprintf("%s%05d", strings.ToUpper(faker.LetterN(1)), faker.Number(0, 99999)),
			Location:         truncate(faker.City(), 100),
			StudentMaxNumber: intPtr(faker.Number(10, 100)),
		})
		var dup *store.DuplicateNameError
		if err == nil || !errors.As(err, &dup) {
			return school, err
		}
	}
	return nil, err
}

// schoolName draws a name that fits the 20 character column
func schoolName(faker *gofakeit.Faker) string {
	suffix := fmt.Sprintf(" %04d", faker.Number(0, 9999))
	return truncate(faker.LastName(), 20-len(suffix)) + suffix
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}

func intPtr(v int) *int { return &v }
