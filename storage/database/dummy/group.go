package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/escuela9/portal/core/group"
)

type groupRepository struct {
	db *groupTable
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.group}
}

func (repo *groupRepository) query() []group.Group {
	groups := make([]group.Group, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func (repo *groupRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, g := range repo.query() {
		if g.Name == name {
			return group.ErrNameExists
		}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.New().String()
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var groups []group.Group
	for _, g := range repo.query() {
		for _, id := range g.TeacherIDs {
			if id == teacherID {
				groups = append(groups, g)
				break
			}
		}
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[g.ID]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	if g.Name != "" {
		orig.Name = g.Name
	}
	if g.Students != nil {
		orig.Students = g.Students
	}
	if g.TeacherIDs != nil {
		orig.TeacherIDs = g.TeacherIDs
	}
	orig.UpdatedAt = g.UpdatedAt

	repo.db.table[g.ID] = orig
	return *orig, nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
