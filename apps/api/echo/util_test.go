package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/escuela9/portal/core"
	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
	emailsvc "github.com/escuela9/portal/services/email"
	logsvc "github.com/escuela9/portal/services/logger"
	dummydb "github.com/escuela9/portal/storage/database/dummy"
	"github.com/escuela9/portal/storage/fileserver"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
}

type testEnv struct {
	app  http.Handler
	conf *core.Config

	usrSvc      *user.Service
	teacherSvc  *teacher.Service
	groupSvc    *group.Service
	scheduleSvc *schedule.Service
}

func testConfig(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		Env:        "TEST",
		TestMode:   true,
		AppName:    "Portal",
		SchoolName: "Escuela Test",
		SecretKey:  "secret",

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Uploads: core.UploadsConfig{Root: t.TempDir(), URLPrefix: "/uploads"},
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	conf := testConfig(t)
	files := fileserver.NewMemoryStore()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))

	env := &testEnv{
		conf:        conf,
		usrSvc:      user.NewService(dummydb.NewUserRepository(db), mailSvc, conf),
		teacherSvc:  teacher.NewService(dummydb.NewTeacherRepository(db), files),
		groupSvc:    group.NewService(dummydb.NewGroupRepository(db)),
		scheduleSvc: schedule.NewService(dummydb.NewScheduleRepository(db), files, conf),
	}
	env.app = NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		UserSvc:        env.usrSvc,
		TeacherSvc:     env.teacherSvc,
		GroupSvc:       env.groupSvc,
		ScheduleSvc:    env.scheduleSvc,
	})
	return env
}

func createUser(t *testing.T, svc *user.Service, name, uname, email, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: uname,
		Email:    email,
		Password: pwd,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", uname, err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User, conf *core.Config) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

// newMultipartRequest builds the form the schedule editor posts.
func newMultipartRequest(t *testing.T, method, path, token string, fields map[string]string, fileField, filename string, fileContent []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s) failed: %v", k, err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = fw.Write(fileContent); err != nil {
			t.Fatalf("writing form file failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}
