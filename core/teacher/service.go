package teacher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core"
)

var NowFunc = time.Now // mockable

const photoDir = "fotos"

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...Teacher) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// QueryAllTeachers returns all teachers ordered by name; this order is
		// what the schedule grid renders rows in.
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		SetTeacherPhotoURL(ctx context.Context, id string, photoURL null.String) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo  Repository
		files core.FileStore
	}
)

func NewService(repo Repository, files core.FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (svc *Service) checkUniqueness(email string, exclTeachers ...Teacher) error {
	if email == "" {
		return nil
	}
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclTeachers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := NowFunc().UTC()
	t := Teacher{
		Name:      nt.Name,
		Email:     nt.Email,
		Age:       nt.Age,
		Sex:       nt.Sex,
		Phone:     nt.Phone,
		Subjects:  nt.Subjects,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

// Names returns the ordered teacher-name list the grid codec consumes.
func (svc *Service) Names(ctx context.Context) ([]string, error) {
	teachers, err := svc.repo.QueryAllTeachers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(teachers))
	for _, t := range teachers {
		names = append(names, t.Name)
	}
	return names, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:        id,
		Name:      ut.Name,
		Email:     ut.Email,
		Age:       ut.Age,
		Sex:       ut.Sex,
		Phone:     ut.Phone,
		Subjects:  ut.Subjects,
		UpdatedAt: NowFunc().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, t)
}

// AttachPhoto stores a profile photo and commits the reference; like the
// schedule artifact path, the new file is written before the old reference
// is dropped, then the old file is cleaned up.
func (svc *Service) AttachPhoto(ctx context.Context, id, filename string, content io.Reader) (Teacher, error) {
	old, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	name := filepath.Join(photoDir, fmt.Sprintf("foto_%s_%d%s", id, NowFunc().UnixNano()/int64(time.Millisecond), ext))

	path, err := svc.files.Save(ctx, name, content)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "storing profile photo")
	}

	t, err := svc.repo.SetTeacherPhotoURL(ctx, id, null.StringFrom(path))
	if err != nil {
		return Teacher{}, errors.Wrap(err, "committing photo reference")
	}

	if old.PhotoURL.Valid && old.PhotoURL.String != path {
		_ = svc.files.Delete(ctx, old.PhotoURL.String)
	}
	return t, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}
