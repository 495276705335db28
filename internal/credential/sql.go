package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Credential is one row of the credentials table.
type Credential struct {
	Name      string `gorm:"primaryKey;size:64"`
	Token     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// SQLStore keeps the credential in a SQL table through gorm.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps an open gorm handle. The credentials table must exist.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore opens dsn and migrates the credentials table. DSNs starting
// with postgres:// or postgresql:// use Postgres; "sqlite://path" or a bare
// path use SQLite.
func OpenSQLStore(dsn string, log *slog.Logger) (*SQLStore, error) {
	dialector, isSQLite := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to credential database: %w", err)
	}

	if isSQLite {
		// Each sqlite connection to :memory: is a separate database.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(&Credential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credential table: %w", err)
	}
	return NewSQLStore(db), nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), true
	default:
		return sqlite.Open(dsn), true
	}
}

func (s *SQLStore) Load(ctx context.Context) (string, error) {
	var row Credential
	err := s.db.WithContext(ctx).First(&row, "name = ?", Key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return row.Token, nil
}

func (s *SQLStore) Save(ctx context.Context, token string) error {
	row := Credential{Name: Key, Token: token}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&Credential{}, "name = ?", Key).Error; err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormLogger routes gorm output through slog and ignores ErrRecordNotFound.
type gormLogger struct {
	logger *slog.Logger
	config logger.Config
}

func newGormLogger(log *slog.Logger) *gormLogger {
	if log == nil {
		log = slog.Default()
	}
	return &gormLogger{
		logger: log,
		config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	out := *l
	out.config.LogLevel = level
	return &out
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "credential query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case l.config.SlowThreshold != 0 && elapsed > l.config.SlowThreshold && l.config.LogLevel >= logger.Warn:
		sql, rows := fc()
		l.logger.WarnContext(ctx, "credential slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}
