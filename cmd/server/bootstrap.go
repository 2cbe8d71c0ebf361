package main

import (
	"context"

	"github.com/khoward/worktrack/internal/config"
	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/internal/utils"
	"github.com/khoward/worktrack/pkg/logger"
)

// appServices bundles everything the routes need.
type appServices struct {
	cfg *config.Config

	hub       *services.ChangeHub
	audit     *services.AuditService
	auth      *services.AuthService
	oauth     *services.OAuthService
	projects  *services.ProjectService
	tasks     *services.TaskService
	timesheet *services.TimesheetService
	profiles  *services.ProfileService
	dashboard *services.DashboardService

	queue  services.MailQueue
	worker *services.Worker
}

func bootstrap(cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, err
	}
	db := models.GetDB()

	mailer := services.NewMailService(&cfg.SMTP, cfg.Server.BaseURL)
	queue := services.InitMailQueue(cfg)

	// Mail delivery runs through the queue either way. With Redis the
	// asynq worker drains it; without, the sync queue delivers inline.
	deliver := func(ctx context.Context, task *services.MailTask) error {
		return mailer.Send(task)
	}
	var worker *services.Worker
	if queue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		worker.SetDeliverer(deliver)
		if err := worker.Start(); err != nil {
			return nil, err
		}
	} else if sq, ok := queue.(*services.SyncQueue); ok {
		sq.SetDeliverer(deliver)
	}

	hub := services.NewChangeHub()
	audit := services.NewAuditService(db, cfg.Audit.RetentionDays)
	if err := audit.StartScheduler(); err != nil {
		return nil, err
	}

	auth := services.NewAuthService(db, &cfg.JWT, mailer, queue)
	if err := auth.CreateAdminIfNotExists(); err != nil {
		logger.Warnf("Failed to create default admin: %v", err)
	}

	return &appServices{
		cfg:       cfg,
		hub:       hub,
		audit:     audit,
		auth:      auth,
		oauth:     services.NewOAuthService(db, cfg, auth),
		projects:  services.NewProjectService(db, hub, audit),
		tasks:     services.NewTaskService(db, hub, audit),
		timesheet: services.NewTimesheetService(db, hub, audit),
		profiles:  services.NewProfileService(db),
		dashboard: services.NewDashboardService(db),
		queue:     queue,
		worker:    worker,
	}, nil
}

func (s *appServices) shutdown() {
	s.audit.StopScheduler()
	if s.worker != nil {
		s.worker.Stop()
	}
	if err := s.queue.Close(); err != nil {
		logger.Warnf("Mail queue close: %v", err)
	}
}
