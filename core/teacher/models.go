package teacher

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core"
)

var (
	// errors
	ErrNotFound    = errors.New("teacher not found")
	ErrEmailExists = errors.New("a teacher with this email already exists")
)

// Teacher is a staff profile. Name doubles as the row key of the master
// schedule grid, so the directory hands out names in a stable order.
type Teacher struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Age       int         `json:"age,omitempty"`
	Sex       string      `json:"sex,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	PhotoURL  null.String `json:"photoUrl"`
	Subjects  []string    `json:"subjects"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Age      int      `json:"age" validate:"omitempty,gte=18,lte=100"`
	Sex      string   `json:"sex" validate:"omitempty,oneof=M F"`
	Phone    string   `json:"phone"`
	Subjects []string `json:"subjects"`
}

func (nt *NewTeacher) Validate(svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkUniqueness(nt.Email)
}

// UpdateTeacher defines what information may be provided to modify a Teacher.
// Zero-valued fields keep their stored values; Subjects replaces the
// assignment list wholesale when non-nil.
type UpdateTeacher struct {
	Name     string   `json:"name"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Age      int      `json:"age" validate:"omitempty,gte=18,lte=100"`
	Sex      string   `json:"sex" validate:"omitempty,oneof=M F"`
	Phone    string   `json:"phone"`
	Subjects []string `json:"subjects"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, svc *Service) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return svc.checkUniqueness(ut.Email, orig)
}
