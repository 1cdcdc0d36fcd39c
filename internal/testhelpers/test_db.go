package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"hireflow/interview/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	openSQLite = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	}
	migrateSchema = func(db *gorm.DB) error { return db.AutoMigrate(models.AllModels()...) }
	dropTableFn   = func(db *gorm.DB, table interface{}) error { return db.Migrator().DropTable(table) }
)

// SetupTestDB creates an isolated in-memory SQLite database for tests.
// A single connection serializes writers, which shared-cache SQLite needs under concurrency.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := openSQLite(dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to access test database: %v", err))
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := migrateSchema(db); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	return db
}

// DropTable removes a table to force repository errors.
func DropTable(t *testing.T, db *gorm.DB, table interface{}) {
	t.Helper()
	if err := dropTableFn(db, table); err != nil {
		panic(fmt.Sprintf("failed to drop table: %v", err))
	}
}

// Fixture is a seeded job, application and interview session.
type Fixture struct {
	Job         models.Job
	Application models.Application
	Session     models.InterviewSession
}

// SeedInterview inserts a job owned by recruiterID, an application by applicantID and its session.
func SeedInterview(t *testing.T, db *gorm.DB, recruiterID, applicantID string) Fixture {
	t.Helper()

	job := models.Job{
		Title:       "Backend Engineer",
		Description: "Build and operate Go services for the hiring platform.",
		RecruiterID: recruiterID,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}

	app := models.Application{JobID: job.ID, ApplicantID: applicantID}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}
	app.Job = job

	session := models.InterviewSession{
		ApplicationID: app.ID,
		ResumeSummary: "Five years building distributed systems in Go and PostgreSQL.",
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	return Fixture{Job: job, Application: app, Session: session}
}
