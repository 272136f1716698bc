package group

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/escuela9/portal/core"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateGroup(ctx context.Context, g Group) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error) // name ASC
		GetGroupByID(ctx context.Context, id string) (Group, error)
		// QueryGroupsByTeacher returns the groups a teacher is assigned to.
		QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]Group, error)
		UpdateGroup(ctx context.Context, g Group) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(name string) error {
	if err := svc.repo.CheckNameUniqueness(context.Background(), name); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := NowFunc().UTC()
	g := Group{
		Name:      ng.Name,
		Students:  sortRoster(ng.Students),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGroup(ctx, g)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

// QueryByTeacher backs the teacher-facing "mis grupos" listing.
func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Group, error) {
	return svc.repo.QueryGroupsByTeacher(ctx, teacherID)
}

// AssignTeacher adds a teacher to the group; assigning an already-assigned
// teacher is a no-op, not an error.
func (svc *Service) AssignTeacher(ctx context.Context, groupID, teacherID string) (Group, error) {
	g, err := svc.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return Group{}, err
	}
	for _, id := range g.TeacherIDs {
		if id == teacherID {
			return g, nil
		}
	}
	g.TeacherIDs = append(g.TeacherIDs, teacherID)
	g.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}

// sortRoster orders students by paternal last name, case-insensitively.
func sortRoster(students Students) Students {
	sorted := make(Students, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].LastName) < strings.ToLower(sorted[j].LastName)
	})
	return sorted
}
