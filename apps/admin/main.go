package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
	emailsvc "github.com/Sibo-Zhao/UKFT-PAI-Group3/services/email"
	logsvc "github.com/Sibo-Zhao/UKFT-PAI-Group3/services/logger"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/storage/database"
	pgrepos "github.com/Sibo-Zhao/UKFT-PAI-Group3/storage/database/postgres"
)

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	sqlDB, err := database.Open(conf)
	if err != nil {
		std.Fatal(err)
	}
	defer sqlDB.Close()
	if err = sqlDB.Ping(); err != nil {
		std.Fatal(err)
	}
	db := sqlx.NewDb(sqlDB, "postgres")

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(logger)

	// start CLI
	cli := commandLine{
		db:        sqlDB,
		usrRepo:   pgrepos.NewUserRepository(db),
		reportSvc: report.NewService(db, pgrepos.NewReportRepository(db), mailSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
