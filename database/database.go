package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/chiaview/site-backend/models"
)

// Database aggregates one repository per table over a shared connection.
type Database struct {
	db               *gorm.DB
	blogPostRepo     *BlogPostRepo
	opportunityRepo  *OpportunityRepo
	testimonialRepo  *TestimonialRepo
	homepageRepo     *HomepageRepo
	settingRepo      *SettingRepo
	contactRepo      *ContactRepo
	formRepo         *FormRepo
	registrationRepo *RegistrationRepo
	newsletterRepo   *NewsletterRepo
	dataStoreRepo    *DataStoreRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:               db,
		blogPostRepo:     NewBlogPostRepo(db),
		opportunityRepo:  NewOpportunityRepo(db),
		testimonialRepo:  NewTestimonialRepo(db),
		homepageRepo:     NewHomepageRepo(db),
		settingRepo:      NewSettingRepo(db),
		contactRepo:      NewContactRepo(db),
		formRepo:         NewFormRepo(db),
		registrationRepo: NewRegistrationRepo(db),
		newsletterRepo:   NewNewsletterRepo(db),
		dataStoreRepo:    NewDataStoreRepo(db),
	}
}

// Open connects to Postgres using the simple protocol (required behind the Supabase
// pooler). Replica DSNs, if any, serve reads through dbresolver.
func Open(dsn string, replicas []string) (*gorm.DB, error) {
	gormLogger := logger.New(
		&log.Logger,
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	if len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, r := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{DSN: r, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "registering read replicas")
		}
		log.Info().Int("replicas", len(replicas)).Msg("read replicas registered")
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, errors.Wrap(err, "testing database connection")
	}
	return db, nil
}

// Migrate creates or updates every table.
func (d Database) Migrate() error {
	if err := d.db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "auto-migrating models")
	}
	return nil
}

// Ping checks the primary connection.
func (d Database) Ping() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) OpportunityRepo() *OpportunityRepo {
	return d.opportunityRepo
}

func (d Database) TestimonialRepo() *TestimonialRepo {
	return d.testimonialRepo
}

func (d Database) HomepageRepo() *HomepageRepo {
	return d.homepageRepo
}

func (d Database) SettingRepo() *SettingRepo {
	return d.settingRepo
}

func (d Database) ContactRepo() *ContactRepo {
	return d.contactRepo
}

func (d Database) FormRepo() *FormRepo {
	return d.formRepo
}

func (d Database) RegistrationRepo() *RegistrationRepo {
	return d.registrationRepo
}

func (d Database) NewsletterRepo() *NewsletterRepo {
	return d.newsletterRepo
}

func (d Database) DataStoreRepo() *DataStoreRepo {
	return d.dataStoreRepo
}
