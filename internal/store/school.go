package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-service/internal/model"
	"school-service/prometheus"
)

// SchoolFilter narrows a school listing. Empty strings match everything.
type SchoolFilter struct {
	Name            string
	Location        string
	IncludeInactive bool
	Page            Page
}

// CreateSchool persists a new active school
func (s *Store) CreateSchool(ctx context.Context, fields SchoolFields) (*model.School, error) {
	defer prometheus.TrackDBOperation("create_school")(time.Now())

	fields.normalize()
	if err := checkFields(&fields); err != nil {
		return nil, err
	}

	school := model.School{
		Name:             fields.Name,
		Code:             fields.Code,
		Location:         fields.Location,
		StudentMaxNumber: model.DefaultStudentMaxNumber,
		IsActive:         true,
	}
	if fields.StudentMaxNumber != nil {
		school.StudentMaxNumber = *fields.StudentMaxNumber
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, school.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&school).Error; err != nil {
			return translateSchoolError(err, school.Name, "create")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("School created",
		zap.Uint("school_id", school.ID),
		zap.String("name", school.Name),
		zap.Int("student_max_number", school.StudentMaxNumber))
	return &school, nil
}

// GetSchool returns an active school by id
func (s *Store) GetSchool(ctx context.Context, id uint) (*model.School, error) {
	defer prometheus.TrackDBOperation("get_school")(time.Now())

	var school model.School
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get school %d: %w", id, err)
	}
	return &school, nil
}

// ListSchools returns one page of schools matching f, newest first, along
// with the total number of matches.
func (s *Store) ListSchools(ctx context.Context, f SchoolFilter) ([]model.School, int64, error) {
	defer prometheus.TrackDBOperation("list_schools")(time.Now())

	q := s.db.WithContext(ctx).Model(&model.School{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count schools: %w", err)
	}

	schools := make([]model.School, 0)
	if err := paginate(newestFirst(q), f.Page).Find(&schools).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}
	return schools, total, nil
}

// UpdateSchool applies patch to an active school. Renaming re-checks that the
// new name is free.
func (s *Store) UpdateSchool(ctx context.Context, id uint, patch SchoolPatch) (*model.School, error) {
	defer prometheus.TrackDBOperation("update_school")(time.Now())

	patch.normalize()
	if err := checkFields(&patch); err != nil {
		return nil, err
	}

	var school *model.School
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		current, err := lockActiveSchool(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if patch.Name != nil && *patch.Name != current.Name {
			if err := ensureNameFree(tx, *patch.Name, id); err != nil {
				return err
			}
			changes["name"] = *patch.Name
		}
		if patch.Code != nil {
			changes["code"] = *patch.Code
		}
		if patch.Location != nil {
			changes["location"] = *patch.Location
		}
		if patch.StudentMaxNumber != nil {
			changes["student_max_number"] = *patch.StudentMaxNumber
		}

		if len(changes) > 0 {
			if err := tx.Model(current).Updates(changes).Error; err != nil {
				name := current.Name
				if patch.Name != nil {
					name = *patch.Name
				}
				return translateSchoolError(err, name, "update")
			}
		}

		var updated model.School
		if err := tx.First(&updated, id).Error; err != nil {
			return fmt.Errorf("failed to reload school %d: %w", id, err)
		}
		school = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("School updated",
		zap.Uint("school_id", school.ID),
		zap.String("name", school.Name))
	return school, nil
}

// DeactivateSchool marks a school inactive and, in the same transaction,
// clears the school reference of every active student that pointed at it.
// Deactivating an already inactive school is a no-op.
func (s *Store) DeactivateSchool(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("deactivate_school")(time.Now())

	var cleared int64
	var alreadyInactive bool
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var school model.School
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&school, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load school %d: %w", id, err)
		}
		if !school.IsActive {
			alreadyInactive = true
			return nil
		}

		if err := tx.Model(&school).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate school %d: %w", id, err)
		}

		res := tx.Model(&model.Student{}).
			Where("school_id = ? AND is_active = ?", id, true).
			Update("school_id", nil)
		if res.Error != nil {
			return fmt.Errorf("failed to unlink students of school %d: %w", id, res.Error)
		}
		cleared = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}

	if alreadyInactive {
		s.log.Debug("School already inactive", zap.Uint("school_id", id))
		return nil
	}

	prometheus.RecordCascade(cleared)
	s.log.Info("School deactivated",
		zap.Uint("school_id", id),
		zap.Int64("students_unlinked", cleared))
	return nil
}

func ensureNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&model.School{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check school name: %w", err)
	}
	if count > 0 {
		return &DuplicateNameError{Name: name}
	}
	return nil
}

func translateSchoolError(err error, name, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateNameError{Name: name}
	}
	return fmt.Errorf("failed to %s school: %w", op, err)
}
