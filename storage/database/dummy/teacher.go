package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers
}

func (repo *teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...teacher.Teacher) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if email == "" {
		return nil
	}
	for _, t := range repo.query() {
		if t.Email == email && !isExcludedID(t.ID, teacherIDs(excludedTeachers)) {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if t.Name != "" {
		orig.Name = t.Name
	}
	if t.Email != "" {
		orig.Email = t.Email
	}
	if t.Age != 0 {
		orig.Age = t.Age
	}
	if t.Sex != "" {
		orig.Sex = t.Sex
	}
	if t.Phone != "" {
		orig.Phone = t.Phone
	}
	if t.Subjects != nil {
		orig.Subjects = t.Subjects
	}
	orig.UpdatedAt = t.UpdatedAt

	repo.db.table[t.ID] = orig
	return *orig, nil
}

func (repo *teacherRepository) SetTeacherPhotoURL(ctx context.Context, id string, photoURL null.String) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	orig.PhotoURL = photoURL
	return *orig, nil
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func teacherIDs(teachers []teacher.Teacher) []string {
	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	return ids
}

func isExcludedID(id string, excluded []string) bool {
	for _, x := range excluded {
		if x == id {
			return true
		}
	}
	return false
}
