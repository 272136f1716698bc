package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
)

func Test_scheduleApi_save(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrSvc, "Admin", "admin1", "admin@test.mx", "S3cret!pwd", []string{user.RoleAdmin})
	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	adminToken := getToken(t, admin, env.conf)
	profToken := getToken(t, prof, env.conf)

	gridJSON := `{"Ana":{"General-Lunes-1":{"text":"1A","color":"#f44336"}}}`
	legendJSON := `{"#f44336":"Grupo 1A"}`

	tests := []struct {
		name     string
		token    string
		fields   map[string]string
		withPDF  bool
		wantCode int
	}{
		{name: "anon is unauthorized", fields: map[string]string{"year": "2025-2026"}, wantCode: http.StatusUnauthorized},
		{name: "teacher portal is read-only", token: profToken, fields: map[string]string{"year": "2025-2026"}, wantCode: http.StatusForbidden},
		{name: "missing year", token: adminToken, fields: map[string]string{"data": gridJSON}, wantCode: http.StatusBadRequest},
		{name: "admin saves grid and legend", token: adminToken, fields: map[string]string{"year": "2025-2026", "data": gridJSON, "legend": legendJSON}, wantCode: http.StatusOK},
		{name: "malformed data falls back to empty grid", token: adminToken, fields: map[string]string{"year": "2026-2027", "data": "{lol"}, wantCode: http.StatusOK},
		{name: "admin saves with pdf", token: adminToken, fields: map[string]string{"year": "2027-2028", "data": gridJSON}, withPDF: true, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileField, filename := "", ""
			var fileContent []byte
			if tt.withPDF {
				fileField, filename, fileContent = "pdf", "horario.pdf", []byte("%PDF-fake")
			}
			req, rec := newMultipartRequest(t, http.MethodPost, "/v1/schedules", tt.token, tt.fields, fileField, filename, fileContent)
			env.app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp SaveScheduleResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response failed: %v", err)
			}
			if resp.Document.Year != tt.fields["year"] {
				t.Errorf("Year = %s, want %s", resp.Document.Year, tt.fields["year"])
			}
			if tt.name == "malformed data falls back to empty grid" && len(resp.Document.Grid) != 0 {
				t.Errorf("Grid = %+v, want empty", resp.Document.Grid)
			}
			if tt.withPDF && !resp.Document.PDFURL.Valid {
				t.Error("PDFURL not set after pdf upload")
			}
		})
	}
}

func Test_scheduleApi_retrieve(t *testing.T) {
	env := setup(t)

	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	profToken := getToken(t, prof, env.conf)

	if _, err := env.scheduleSvc.Upsert(context.Background(), "2025-2026",
		schedule.Grid{"Ana": {schedule.CellKey{Subject: schedule.SubjectGeneral, Weekday: "Lunes", Period: 1}: {Text: "1A", Color: "#f44336"}}},
		nil,
	); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	t.Run("anon is unauthorized", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/schedules/2025-2026")
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d, want 401", rec.Code)
		}
	})

	t.Run("known year", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules/2025-2026", profToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var doc schedule.Document
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		key := schedule.CellKey{Subject: schedule.SubjectGeneral, Weekday: "Lunes", Period: 1}
		if cell := doc.Grid["Ana"].Lookup(key); cell.Color != "#f44336" {
			t.Errorf("cell = %+v, want painted", cell)
		}
	})

	t.Run("unknown year is the empty default, never 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules/2099-2100", profToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var doc schedule.Document
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		if doc.Year != "2099-2100" || len(doc.Grid) != 0 || len(doc.Legend) != 0 || doc.PDFURL.Valid {
			t.Errorf("default document = %+v", doc)
		}
	})
}

func Test_scheduleApi_list(t *testing.T) {
	env := setup(t)

	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	profToken := getToken(t, prof, env.conf)

	ctx := context.Background()
	for _, year := range []string{"2023-2024", "2025-2026", "2024-2025"} {
		if _, err := env.scheduleSvc.Upsert(ctx, year, nil, nil); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", year, err)
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/schedules", profToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var summaries []schedule.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	want := []string{"2025-2026", "2024-2025", "2023-2024"}
	if len(summaries) != len(want) {
		t.Fatalf("len = %d, want %d", len(summaries), len(want))
	}
	for i, summary := range summaries {
		if summary.Year != want[i] {
			t.Errorf("summaries[%d].Year = %s, want %s", i, summary.Year, want[i])
		}
	}
}

func Test_scheduleApi_destroy(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrSvc, "Admin", "admin1", "admin@test.mx", "S3cret!pwd", []string{user.RoleAdmin})
	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	adminToken := getToken(t, admin, env.conf)
	profToken := getToken(t, prof, env.conf)

	if _, err := env.scheduleSvc.Upsert(context.Background(), "2025-2026", nil, nil); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	tests := []httpTest{
		{name: "anon is unauthorized", path: "/v1/schedules/2025-2026", wantCode: http.StatusUnauthorized},
		{name: "teacher is forbidden", path: "/v1/schedules/2025-2026", token: profToken, wantCode: http.StatusForbidden},
		{name: "unknown year", path: "/v1/schedules/2099-2100", token: adminToken, wantCode: http.StatusNotFound},
		{name: "admin deletes", path: "/v1/schedules/2025-2026", token: adminToken, wantCode: http.StatusNoContent},
		{name: "second delete is 404", path: "/v1/schedules/2025-2026", token: adminToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d; body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_scheduleApi_export(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrSvc, "Admin", "admin1", "admin@test.mx", "S3cret!pwd", []string{user.RoleAdmin})
	prof := createUser(t, env.usrSvc, "Profe", "profe1", "profe@test.mx", "S3cret!pwd", []string{user.RoleTeacher})
	adminToken := getToken(t, admin, env.conf)
	profToken := getToken(t, prof, env.conf)

	ctx := context.Background()
	if _, err := env.teacherSvc.Create(ctx, teacher.NewTeacher{Name: "Ana", Email: "ana@test.mx"}); err != nil {
		t.Fatalf("Create(teacher) failed: %v", err)
	}
	if _, err := env.scheduleSvc.Upsert(ctx, "2025-2026",
		schedule.Grid{"Ana": {schedule.CellKey{Subject: schedule.SubjectGeneral, Weekday: "Lunes", Period: 1}: {Text: "1A", Color: "#f44336"}}},
		schedule.Legend{"#f44336": "Grupo 1A"},
	); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	t.Run("teacher is forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules/2025-2026/export", profToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})

	t.Run("admin exports", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules/2025-2026/export", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var doc schedule.Document
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		if !doc.PDFURL.Valid {
			t.Error("PDFURL not set after export")
		}
	})
}
