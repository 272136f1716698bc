package teacher_test

import (
	"context"
	"io/ioutil"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/escuela9/portal/core"
	"github.com/escuela9/portal/core/teacher"
	dummydb "github.com/escuela9/portal/storage/database/dummy"
	"github.com/escuela9/portal/storage/fileserver"
)

type memStore interface {
	core.FileStore
	Len() int
}

func setup(t *testing.T) (*teacher.Service, memStore) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	files := fileserver.NewMemoryStore()
	svc := teacher.NewService(dummydb.NewTeacherRepository(db), files)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var calls int
	teacher.NowFunc = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	t.Cleanup(func() { teacher.NowFunc = time.Now })

	return svc, files
}

func createTeacher(t *testing.T, svc *teacher.Service, name, email string, subjects ...string) teacher.Teacher {
	t.Helper()
	tch, err := svc.Create(context.Background(), teacher.NewTeacher{Name: name, Email: email, Subjects: subjects})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", name, err)
	}
	return tch
}

func TestServiceNamesOrder(t *testing.T) {
	svc, _ := setup(t)

	createTeacher(t, svc, "Carlos", "carlos@test.mx")
	createTeacher(t, svc, "Ana", "ana@test.mx")
	createTeacher(t, svc, "Benito", "benito@test.mx")

	names, err := svc.Names(context.Background())
	if err != nil {
		t.Fatalf("Names() failed: %v", err)
	}
	want := []string{"Ana", "Benito", "Carlos"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

func TestNewTeacherValidateUniqueEmail(t *testing.T) {
	svc, _ := setup(t)

	createTeacher(t, svc, "Ana", "ana@test.mx")

	nt := teacher.NewTeacher{Name: "Otra Ana", Email: "ana@test.mx"}
	err := nt.Validate(svc)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tch := createTeacher(t, svc, "Ana", "ana@test.mx", "Matemáticas")

	got, err := svc.Update(ctx, tch.ID, teacher.UpdateTeacher{Phone: "5512345678"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got.Phone != "5512345678" {
		t.Errorf("Phone = %s, want 5512345678", got.Phone)
	}
	if got.Name != "Ana" || got.Email != "ana@test.mx" {
		t.Errorf("unset fields changed: %+v", got)
	}
	if !reflect.DeepEqual(got.Subjects, []string{"Matemáticas"}) {
		t.Errorf("Subjects = %v, want unchanged", got.Subjects)
	}

	got, err = svc.Update(ctx, tch.ID, teacher.UpdateTeacher{Subjects: []string{"Física", "Química"}})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !reflect.DeepEqual(got.Subjects, []string{"Física", "Química"}) {
		t.Errorf("Subjects = %v, want wholesale replacement", got.Subjects)
	}
}

func TestServiceAttachPhotoReplaces(t *testing.T) {
	svc, files := setup(t)
	ctx := context.Background()

	tch := createTeacher(t, svc, "Ana", "ana@test.mx")

	t1, err := svc.AttachPhoto(ctx, tch.ID, "a.png", strings.NewReader("old photo"))
	if err != nil {
		t.Fatalf("AttachPhoto() failed: %v", err)
	}
	t2, err := svc.AttachPhoto(ctx, tch.ID, "b.png", strings.NewReader("new photo"))
	if err != nil {
		t.Fatalf("AttachPhoto() failed: %v", err)
	}

	if t2.PhotoURL.String == t1.PhotoURL.String {
		t.Fatal("photo path did not change on replacement")
	}
	if files.Len() != 1 {
		t.Errorf("files.Len() = %d, want 1 (old photo removed)", files.Len())
	}

	f, err := files.Open(ctx, t2.PhotoURL.String)
	if err != nil {
		t.Fatalf("Open(new photo) failed: %v", err)
	}
	defer f.Close()
	data, _ := ioutil.ReadAll(f)
	if string(data) != "new photo" {
		t.Errorf("new photo content = %q", data)
	}
}

func TestServiceAttachPhotoUnknownTeacher(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.AttachPhoto(context.Background(), "nope", "a.png", strings.NewReader("photo"))
	if errors.Cause(err) != teacher.ErrNotFound {
		t.Errorf("AttachPhoto() error = %v, want ErrNotFound", err)
	}
}
