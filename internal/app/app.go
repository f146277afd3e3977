package app

import (
	"LearnSphere/internal/app/server"
	"LearnSphere/internal/config"
	"LearnSphere/internal/delivery/http"
	"LearnSphere/internal/notify"
	"LearnSphere/internal/service"
	"LearnSphere/internal/service/assessment"
	"LearnSphere/internal/service/classroom"
	"LearnSphere/internal/service/enrollment"
	"LearnSphere/internal/service/identity"
	"LearnSphere/internal/storage/postgres"
	"LearnSphere/pkg/logger"
	"os"
	"os/signal"
	"syscall"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	classroomRepo := postgres.NewClassroomPostgres(pg.Pool)
	progressRepo := postgres.NewProgressPostgres(pg.Pool)
	enrollRepo := postgres.NewEnrollmentPostgres(pg.Pool)

	publisher := notify.NewLogPublisher(log)
	allocator := classroom.NewAllocatorService(log, courseRepo, classroomRepo, publisher)
	u := service.Collection{
		Allocator:  allocator,
		Enrollment: enrollment.NewService(log, classroomRepo, progressRepo, allocator, enrollRepo, publisher, cfg.Enrollment.SelectRetries),
		Assessment: assessment.NewService(log, classroomRepo, progressRepo, publisher),
		Identity:   identity.NewManager(cfg.JWT.SecretKey),
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
