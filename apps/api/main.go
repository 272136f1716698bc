package main

import (
	"log"
	"os"

	echoapi "github.com/escuela9/portal/apps/api/echo"
	"github.com/escuela9/portal/core"
	"github.com/escuela9/portal/core/group"
	"github.com/escuela9/portal/core/schedule"
	"github.com/escuela9/portal/core/teacher"
	"github.com/escuela9/portal/core/user"
	emailsvc "github.com/escuela9/portal/services/email"
	logsvc "github.com/escuela9/portal/services/logger"
	"github.com/escuela9/portal/storage/database"
	sqlxrepos "github.com/escuela9/portal/storage/database/sqlx"
	"github.com/escuela9/portal/storage/fileserver"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.RollbarToken != "" && !conf.Debug {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	// set up DB
	if conf.Debug {
		errAndDie(database.CreateIfNotExist(conf))
	}
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(database.Migrate(db.DB))

	files := fileserver.NewLocalStore(conf)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	teacherSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(db), files)
	groupSvc := group.NewService(sqlxrepos.NewGroupRepository(db))
	scheduleSvc := schedule.NewService(sqlxrepos.NewScheduleRepository(db), files, conf)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     conf.Server.Address(),
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			TeacherSvc:  teacherSvc,
			GroupSvc:    groupSvc,
			ScheduleSvc: scheduleSvc,
		},
	)
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
