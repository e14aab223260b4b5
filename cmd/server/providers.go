package main

import (
	"log"

	"campus_desk_backend/internal/analytics"
	"campus_desk_backend/internal/category"
	"campus_desk_backend/internal/complaint"
	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/lostfound"
	"campus_desk_backend/internal/notification"
	"campus_desk_backend/internal/platform/database"
	"campus_desk_backend/internal/platform/elasticsearch"
	"campus_desk_backend/internal/platform/logger"
	"campus_desk_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// syncCommand is what sync-items needs.
type syncCommand struct {
	Items  *lostfound.Service
	ES     *elasticsearch.ESClientWrapper
	Logger *zap.Logger
}

// exportCommand is what export-analytics needs.
type exportCommand struct {
	Analytics *analytics.Service
	Logger    *zap.Logger
}

// migrateCommand is what migrate needs.
type migrateCommand struct {
	DB         *gorm.DB
	Categories category.Service
	Logger     *zap.Logger
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}, nil
}

func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}

func provideComplaintOptions(cfg *config.Config) complaint.Options {
	return complaint.Options{
		Bucket:         cfg.ComplaintBucket,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CacheTTL:       cfg.ListCacheTTL,
	}
}

func provideLostFoundOptions(cfg *config.Config) lostfound.Options {
	return lostfound.Options{
		Bucket:         cfg.LostFoundBucket,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CacheTTL:       cfg.ListCacheTTL,
	}
}

// provideLostFoundIndex is nil when Elasticsearch is not configured.
func provideLostFoundIndex(client *elasticsearch.ESClientWrapper, logger *zap.Logger) lostfound.SearchIndex {
	return lostfound.NewSearchIndex(elasticsearch.NewIndexer(client, elasticsearch.LostFoundIndexName, logger))
}

func provideComplaintCategories(s category.Service) complaint.Categories { return s }

func provideComplaintNotifier(s notification.Service) complaint.Notifier { return s }

func provideLostFoundNotifier(s notification.Service) lostfound.Notifier { return s }

// migrationModels lists every table the application owns.
func migrationModels() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Admin{},
		&category.Category{},
		&complaint.Complaint{},
		&complaint.FacilityDetail{},
		&complaint.AdministrativeDetail{},
		&complaint.Attachment{},
		&lostfound.LostItem{},
		&lostfound.FoundItem{},
		&lostfound.ItemAttachment{},
		&notification.Notification{},
	}
}
