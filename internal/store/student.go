package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-service/internal/model"
	"school-service/internal/rules"
	"school-service/prometheus"
)

// StudentFilter narrows a student listing. Empty strings match everything;
// SchoolID restricts the listing to students of one school.
type StudentFilter struct {
	FirstName       string
	LastName        string
	SchoolName      string
	SchoolID        *uint
	IncludeInactive bool
	Page            Page
}

// CreateStudent registers a new active student, linked to schoolID when it is
// not nil. The age rule and, for a linked student, the capacity rule must pass
// against the school's enrolment as seen inside the transaction.
func (s *Store) CreateStudent(ctx context.Context, fields StudentFields, schoolID *uint) (*model.Student, error) {
	defer prometheus.TrackDBOperation("create_student")(time.Now())

	fields.normalize()
	if err := checkFields(&fields); err != nil {
		return nil, err
	}

	var created *model.Student
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		m := rules.Mutation{Create: true, Age: &fields.Age}
		if schoolID != nil {
			school, enrolled, err := targetSchool(tx, *schoolID)
			if err != nil {
				return err
			}
			m.TargetSchool = school
			m.Enrolled = enrolled
		}
		if err := s.approve(m); err != nil {
			return err
		}

		student := model.Student{
			Title:          fields.Title,
			FirstName:      fields.FirstName,
			LastName:       fields.LastName,
			Age:            fields.Age,
			Gender:         fields.Gender,
			Identification: uuid.New(),
			SchoolID:       schoolID,
			IsActive:       true,
		}
		if err := tx.Omit(clause.Associations).Create(&student).Error; err != nil {
			return fmt.Errorf("failed to create student: %w", err)
		}

		loaded, err := loadStudent(tx, student.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Student created",
		zap.Uint("student_id", created.ID),
		zap.String("identification", created.Identification.String()),
		zap.Any("school_id", created.SchoolID))
	return created, nil
}

// GetStudent returns an active student by id with its school loaded
func (s *Store) GetStudent(ctx context.Context, id uint) (*model.Student, error) {
	return s.getStudent(ctx, id, nil)
}

// GetStudentInSchool returns an active student by id only if it belongs to schoolID
func (s *Store) GetStudentInSchool(ctx context.Context, schoolID, id uint) (*model.Student, error) {
	return s.getStudent(ctx, id, &schoolID)
}

func (s *Store) getStudent(ctx context.Context, id uint, schoolID *uint) (*model.Student, error) {
	defer prometheus.TrackDBOperation("get_student")(time.Now())

	q := s.db.WithContext(ctx).Preload("School").Where("id = ? AND is_active = ?", id, true)
	if schoolID != nil {
		q = q.Where("school_id = ?", *schoolID)
	}
	var student model.Student
	if err := q.First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &student, nil
}

// ListStudents returns one page of students matching f, newest first, along
// with the total number of matches.
func (s *Store) ListStudents(ctx context.Context, f StudentFilter) ([]model.Student, int64, error) {
	defer prometheus.TrackDBOperation("list_students")(time.Now())

	db := s.db.WithContext(ctx)
	q := db.Model(&model.Student{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.SchoolID != nil {
		q = q.Where("school_id = ?", *f.SchoolID)
	}
	if f.FirstName != "" {
		q = q.Where("first_name = ?", f.FirstName)
	}
	if f.LastName != "" {
		q = q.Where("last_name = ?", f.LastName)
	}
	if f.SchoolName != "" {
		q = q.Where("school_id IN (?)", db.Model(&model.School{}).Select("id").Where("name = ?", f.SchoolName))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	students := make([]model.Student, 0)
	if err := paginate(newestFirst(q.Preload("School")), f.Page).Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return students, total, nil
}

// UpdateStudent applies patch to an active student. A supplied age is always
// re-checked; the capacity rule runs when the patch moves the student into a
// different school. A rejected patch leaves the student untouched.
func (s *Store) UpdateStudent(ctx context.Context, id uint, patch StudentPatch) (*model.Student, error) {
	return s.updateStudent(ctx, id, nil, patch)
}

// UpdateStudentInSchool is UpdateStudent for a student that must belong to
// schoolID. The school reference cannot be changed through it.
func (s *Store) UpdateStudentInSchool(ctx context.Context, schoolID, id uint, patch StudentPatch) (*model.Student, error) {
	patch.SetSchool = false
	patch.SchoolID = nil
	return s.updateStudent(ctx, id, &schoolID, patch)
}

func (s *Store) updateStudent(ctx context.Context, id uint, inSchool *uint, patch StudentPatch) (*model.Student, error) {
	defer prometheus.TrackDBOperation("update_student")(time.Now())

	patch.normalize()
	if err := checkFields(&patch); err != nil {
		return nil, err
	}

	var updated *model.Student
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		// school before student, the order DeactivateSchool takes them in
		var (
			target   *model.School
			enrolled int64
			err      error
		)
		if patch.SetSchool && patch.SchoolID != nil {
			target, enrolled, err = targetSchool(tx, *patch.SchoolID)
			if err != nil {
				return err
			}
		}

		current, err := lockActiveStudent(tx, id, inSchool)
		if err != nil {
			return err
		}

		m := rules.Mutation{Age: patch.Age, PreviousSchoolID: current.SchoolID}
		if patch.SetSchool {
			m.TargetSchool = target
			m.Enrolled = enrolled
		} else if current.SchoolID != nil {
			m.TargetSchool = &model.School{ID: *current.SchoolID}
		}
		if err := s.approve(m); err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if patch.Title != nil {
			changes["title"] = *patch.Title
		}
		if patch.FirstName != nil {
			changes["first_name"] = *patch.FirstName
		}
		if patch.LastName != nil {
			changes["last_name"] = *patch.LastName
		}
		if patch.Age != nil {
			changes["age"] = *patch.Age
		}
		if patch.Gender != nil {
			changes["gender"] = *patch.Gender
		}
		if patch.SetSchool {
			if patch.SchoolID == nil {
				changes["school_id"] = nil
			} else {
				changes["school_id"] = *patch.SchoolID
			}
		}

		if len(changes) > 0 {
			if err := tx.Model(current).Omit(clause.Associations).Updates(changes).Error; err != nil {
				return fmt.Errorf("failed to update student %d: %w", id, err)
			}
		}

		loaded, err := loadStudent(tx, id)
		if err != nil {
			return err
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Student updated",
		zap.Uint("student_id", updated.ID),
		zap.Any("school_id", updated.SchoolID))
	return updated, nil
}

// DeactivateStudent marks a student inactive. Students have no dependents so
// nothing cascades. Deactivating an inactive student is a no-op.
func (s *Store) DeactivateStudent(ctx context.Context, id uint) error {
	return s.deactivateStudent(ctx, id, nil)
}

// DeactivateStudentInSchool is DeactivateStudent for a student that must belong to schoolID
func (s *Store) DeactivateStudentInSchool(ctx context.Context, schoolID, id uint) error {
	return s.deactivateStudent(ctx, id, &schoolID)
}

func (s *Store) deactivateStudent(ctx context.Context, id uint, inSchool *uint) error {
	defer prometheus.TrackDBOperation("deactivate_student")(time.Now())

	q := s.db.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id)
	if inSchool != nil {
		q = q.Where("school_id = ?", *inSchool)
	}
	var student model.Student
	if err := q.First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load student %d: %w", id, err)
	}
	if !student.IsActive {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&student).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate student %d: %w", id, err)
	}
	s.log.Info("Student deactivated", zap.Uint("student_id", id))
	return nil
}

// approve runs the registration rules and converts a violation into a ValidationError
func (s *Store) approve(m rules.Mutation) error {
	err := rules.Validate(m)
	if err == nil {
		return nil
	}
	if v, ok := rules.IsViolation(err); ok {
		prometheus.RecordRuleRejection(v.Rule)
		s.log.Info("Student mutation rejected",
			zap.String("rule", v.Rule),
			zap.Bool("create", m.Create))
		return &ValidationError{Rule: v.Rule, Message: v.Message}
	}
	return err
}

// targetSchool locks the school a student is about to join and counts its
// active students. An unknown or inactive school is a field error.
func targetSchool(tx *gorm.DB, id uint) (*model.School, int64, error) {
	school, err := lockActiveSchool(tx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, 0, FieldError("school", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
		return nil, 0, err
	}
	enrolled, err := countActiveStudents(tx, id)
	if err != nil {
		return nil, 0, err
	}
	return school, enrolled, nil
}

func lockActiveStudent(tx *gorm.DB, id uint, inSchool *uint) (*model.Student, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ? AND is_active = ?", id, true)
	if inSchool != nil {
		q = q.Where("school_id = ?", *inSchool)
	}
	var student model.Student
	if err := q.First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load student %d: %w", id, err)
	}
	return &student, nil
}

func loadStudent(tx *gorm.DB, id uint) (*model.Student, error) {
	var student model.Student
	if err := tx.Preload("School").First(&student, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload student %d: %w", id, err)
	}
	return &student, nil
}
