// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"campus_desk_backend/internal/analytics"
	"campus_desk_backend/internal/app"
	"campus_desk_backend/internal/auth"
	"campus_desk_backend/internal/category"
	"campus_desk_backend/internal/complaint"
	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/firebase"
	"campus_desk_backend/internal/jobs"
	"campus_desk_backend/internal/lostfound"
	"campus_desk_backend/internal/mailer"
	"campus_desk_backend/internal/notification"
	"campus_desk_backend/internal/platform/cache"
	"campus_desk_backend/internal/platform/elasticsearch"
	"campus_desk_backend/internal/platform/storage"
	"campus_desk_backend/internal/session"
	"campus_desk_backend/internal/user"

	"github.com/google/wire"
)

var directorySet = wire.NewSet(
	user.NewGORMRepository,
	user.NewService,
	notification.NewGORMRepository,
	notification.NewService,
)

var complaintSet = wire.NewSet(
	category.NewGORMRepository,
	category.NewService,
	complaint.NewGORMRepository,
	complaint.NewService,
	provideComplaintOptions,
	provideComplaintCategories,
	provideComplaintNotifier,
	storage.NewObjectStore,
	mailer.New,
	cache.New,
	wire.Bind(new(complaint.Directory), new(*user.ServiceImplementation)),
)

var lostFoundSet = wire.NewSet(
	lostfound.NewGORMRepository,
	lostfound.NewService,
	provideLostFoundOptions,
	provideLostFoundNotifier,
	elasticsearch.NewClient,
	provideLostFoundIndex,
	wire.Bind(new(lostfound.Directory), new(*user.ServiceImplementation)),
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		firebase.NewFirebaseService,
		wire.Bind(new(session.Verifier), new(*firebase.FirebaseService)),
		wire.Bind(new(session.Resolver), new(*user.ServiceImplementation)),
		directorySet,
		complaintSet,
		lostFoundSet,
		analytics.NewService,
		wire.Bind(new(analytics.ComplaintSource), new(*complaint.Service)),
		wire.Bind(new(analytics.RoleDirectory), new(*user.ServiceImplementation)),
		jobs.NewSearchReindexJob,
		wire.Bind(new(jobs.Reindexer), new(*lostfound.Service)),

		auth.NewHandler,
		category.NewHandler,
		complaint.NewHandler,
		lostfound.NewHandler,
		analytics.NewHandler,
		notification.NewTimeline,
		wire.Bind(new(notification.SubjectSource), new(*complaint.Service)),
		notification.NewHandler,
		user.NewHandler,
		wire.Bind(new(user.HandledCounter), new(*complaint.Service)),
		wire.Struct(new(app.Handlers), "*"),

		app.NewServer,
	)
	return nil, nil, nil
}

func initializeSyncCommand(cfg *config.Config) (*syncCommand, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		directorySet,
		storage.NewObjectStore,
		mailer.New,
		cache.New,
		lostFoundSet,
		wire.Struct(new(syncCommand), "*"),
	)
	return nil, nil, nil
}

func initializeExportCommand(cfg *config.Config) (*exportCommand, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		directorySet,
		complaintSet,
		analytics.NewService,
		wire.Bind(new(analytics.ComplaintSource), new(*complaint.Service)),
		wire.Bind(new(analytics.RoleDirectory), new(*user.ServiceImplementation)),
		wire.Struct(new(exportCommand), "*"),
	)
	return nil, nil, nil
}

func initializeMigrateCommand(cfg *config.Config) (*migrateCommand, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		category.NewGORMRepository,
		category.NewService,
		wire.Struct(new(migrateCommand), "*"),
	)
	return nil, nil, nil
}
