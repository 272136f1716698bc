package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
)

func Test_groupApi_adminOnly(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrSvc, "Admin", "admin1", "admin@test.mx", "S3cret!pwd", []string{user.RoleAdmin})
	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	adminToken := getToken(t, admin, env.conf)
	profToken := getToken(t, prof, env.conf)

	ctx := context.Background()
	tch, err := env.teacherSvc.Create(ctx, teacher.NewTeacher{Name: "Ana", Email: "ana@test.mx"})
	if err != nil {
		t.Fatalf("Create(teacher) failed: %v", err)
	}
	g, err := env.groupSvc.Create(ctx, group.NewGroup{
		Name:     "1A",
		Students: group.Students{{FirstName: "Luis", LastName: "Mendoza"}},
	})
	if err != nil {
		t.Fatalf("Create(group) failed: %v", err)
	}

	tests := []httpTest{
		{name: "teacher cannot list rosters", method: http.MethodGet, path: "/v1/groups", token: profToken, wantCode: http.StatusForbidden},
		{name: "admin lists rosters", method: http.MethodGet, path: "/v1/groups", token: adminToken, wantCode: http.StatusOK},
		{name: "admin creates", method: http.MethodPost, path: "/v1/groups", token: adminToken,
			body:     []byte(`{"name":"2B","students":[{"first_name":"Ana","last_name":"García"}]}`),
			wantCode: http.StatusCreated},
		{name: "duplicate name", method: http.MethodPost, path: "/v1/groups", token: adminToken,
			body:     []byte(`{"name":"1A","students":[{"first_name":"Ana","last_name":"García"}]}`),
			wantCode: http.StatusBadRequest},
		{name: "retrieve", method: http.MethodGet, path: "/v1/groups/" + g.ID, token: adminToken, wantCode: http.StatusOK},
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/groups/nope", token: adminToken, wantCode: http.StatusNotFound},
		{name: "assign requires teacher_id", method: http.MethodPut, path: "/v1/groups/" + g.ID + "/teacher", token: adminToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "assign unknown teacher", method: http.MethodPut, path: "/v1/groups/" + g.ID + "/teacher", token: adminToken,
			body: []byte(`{"teacher_id":"nope"}`), wantCode: http.StatusNotFound},
		{name: "assign teacher", method: http.MethodPut, path: "/v1/groups/" + g.ID + "/teacher", token: adminToken,
			body: []byte(`{"teacher_id":"` + tch.ID + `"}`), wantCode: http.StatusOK},
		{name: "teacher cannot delete", method: http.MethodDelete, path: "/v1/groups/" + g.ID, token: profToken, wantCode: http.StatusForbidden},
		{name: "admin deletes", method: http.MethodDelete, path: "/v1/groups/" + g.ID, token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_groupApi_mine(t *testing.T) {
	env := setup(t)

	prof := createUser(t, env.usrSvc, "Ana", "ana1", "ana@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	other := createUser(t, env.usrSvc, "Otro", "otro1", "otro@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	profToken := getToken(t, prof, env.conf)
	otherToken := getToken(t, other, env.conf)

	ctx := context.Background()
	tch, err := env.teacherSvc.Create(ctx, teacher.NewTeacher{Name: "Ana", Email: "ana@test.mx"})
	if err != nil {
		t.Fatalf("Create(teacher) failed: %v", err)
	}
	g, err := env.groupSvc.Create(ctx, group.NewGroup{
		Name:     "1A",
		Students: group.Students{{FirstName: "Luis", LastName: "Mendoza"}},
	})
	if err != nil {
		t.Fatalf("Create(group) failed: %v", err)
	}
	if _, err = env.groupSvc.AssignTeacher(ctx, g.ID, tch.ID); err != nil {
		t.Fatalf("AssignTeacher() failed: %v", err)
	}

	t.Run("teacher sees own groups", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/mine", profToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var groups []group.Group
		if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		if len(groups) != 1 || groups[0].Name != "1A" {
			t.Errorf("groups = %+v, want [1A]", groups)
		}
	})

	t.Run("account without a teacher profile gets an empty list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/mine", otherToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var groups []group.Group
		if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("groups = %+v, want empty", groups)
		}
	})
}
