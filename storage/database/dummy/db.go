package dummydb

import (
	"sync"

	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
)

type (
	DB struct {
		user     *userTable
		teacher  *teacherTable
		group    *groupTable
		schedule *scheduleTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher.Teacher
	}

	groupTable struct {
		sync.RWMutex
		table map[string]*group.Group
	}

	scheduleTable struct {
		sync.RWMutex
		table map[string]*schedule.Document // keyed by year
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		teacher:  &teacherTable{table: make(map[string]*teacher.Teacher)},
		group:    &groupTable{table: make(map[string]*group.Group)},
		schedule: &scheduleTable{table: make(map[string]*schedule.Document)},
	}
	return db, nil
}
