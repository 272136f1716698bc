package group

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/escuela9/portal/core"
)

var (
	// errors
	ErrNotFound   = errors.New("group not found")
	ErrNameExists = errors.New("a group with this name already exists")
)

// Student is one roster entry. Rosters are kept sorted by paternal last name.
type Student struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	MaternalLastName string `json:"maternal_last_name,omitempty"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(strings.Join([]string{s.FirstName, s.LastName, s.MaternalLastName}, " "))
}

// Students is persisted as JSONB.
type Students []Student

func (s Students) Value() (driver.Value, error) {
	if s == nil {
		s = Students{}
	}
	return json.Marshal(s)
}

func (s *Students) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, s)
	case string:
		return json.Unmarshal([]byte(data), s)
	}
	return errors.New("incompatible type for JSON column")
}

// Group is a named student group (e.g. "1A") with its roster and the
// teachers assigned to it.
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Students   Students  `json:"students"`
	TeacherIDs []string  `json:"teacher_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name     string   `json:"name" validate:"required"`
	Students Students `json:"students" validate:"required,min=1,dive"`
}

func (ng *NewGroup) Validate(svc *Service) error {
	ng.Name = core.CleanString(ng.Name)
	for i := range ng.Students {
		ng.Students[i].FirstName = core.CleanString(ng.Students[i].FirstName)
		ng.Students[i].LastName = core.CleanString(ng.Students[i].LastName)
		ng.Students[i].MaternalLastName = core.CleanString(ng.Students[i].MaternalLastName)
	}

	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.checkUniqueness(ng.Name)
}
