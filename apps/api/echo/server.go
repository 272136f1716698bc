package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/escuela9/portal/core"
	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		// Shutdown is called when an unrecoverable error is caught so the
		// caller can stop the server gracefully.
		Shutdown func()

		UserSvc     *user.Service
		TeacherSvc  *teacher.Service
		GroupSvc    *group.Service
		ScheduleSvc *schedule.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	shutdown := s.opts.Shutdown
	if shutdown == nil {
		shutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, shutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.Static(conf.Uploads.URLPrefix, conf.Uploads.Root)

	v1 := s.app.Group("/v1")
	jwt := newJWTMiddleware(conf)

	registerUserAPI(v1, jwt, s.opts.UserSvc, conf)
	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerGroupAPI(v1, jwt, s.opts.GroupSvc, s.opts.TeacherSvc)
	registerScheduleAPI(v1, jwt, s.opts.ScheduleSvc, s.opts.TeacherSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido al Portal Escolar!")
}
