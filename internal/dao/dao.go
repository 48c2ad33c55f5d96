package dao

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/util"
	"github.com/haierkeys/fast-note-kb-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/gookit/goutil/fsutil"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite | mysql | postgres
	Type        string
	Path        string
	UserName    string
	Password    string
	Host        string
	Name        string
	TablePrefix string
	AutoMigrate bool
	Charset     string
	ParseTime   bool
	// Replicas DSNs of read replicas, same type as the primary
	Replicas        []string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	// Debug logs every SQL statement
	Debug bool
	// Tracing installs the OpenTracing gorm plugin
	Tracing bool
}

const memoryPath = ":memory:"

// Dao 数据访问对象，持有数据库连接与写队列
type Dao struct {
	db         *gorm.DB
	writeQueue *writequeue.Manager
	logger     *zap.Logger
	// writes counts finished ExecuteWrite calls
	writes atomic.Uint64
}

// Option Dao 选项
type Option func(*Dao)

// WithWriteQueue serializes writes of the same owner through wq
func WithWriteQueue(wq *writequeue.Manager) Option {
	return func(d *Dao) { d.writeQueue = wq }
}

// WithLogger 设置日志器
func WithLogger(lg *zap.Logger) Option {
	return func(d *Dao) { d.logger = lg }
}

// New 创建 Dao
func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns a session bound to ctx; reads go to replicas when configured
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Primary returns a session pinned to the primary, for reads that must see the latest write
func (d *Dao) Primary(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Clauses(dbresolver.Write)
}

// ExecuteWrite runs fn in a transaction, serialized per owner when a write queue is set
// ExecuteWrite 在事务中执行写操作，同一用户的写操作串行化
func (d *Dao) ExecuteWrite(ctx context.Context, uid int64, fn func(tx *gorm.DB) error) error {
	defer d.writes.Add(1)
	run := func(ctx context.Context) error {
		return d.db.WithContext(ctx).Transaction(fn)
	}
	if d.writeQueue == nil {
		return run(ctx)
	}
	return d.writeQueue.Execute(ctx, uid, run)
}

// Ping 检查数据库连接
func (d *Dao) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate 自动迁移所有表
func (d *Dao) Migrate() error {
	return model.AutoMigrate(d.db)
}

// WriteSeq 已完成的写操作计数
// It is bumped after the transaction has ended, so a read taken after a write returns is higher
// than any read taken before that write finished.
func (d *Dao) WriteSeq() uint64 {
	return d.writes.Load()
}

// isDuplicate reports a unique index violation across drivers
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// NewDBEngineWithConfig opens the database described by c
// NewDBEngineWithConfig 根据配置创建数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	if c.Type == "" {
		c.Type = "sqlite"
	}
	if c.Type == "sqlite" && c.Path == "" {
		c.Path = memoryPath
	}
	dialector, err := newDialector(c.Type, dsnOf(c))
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if c.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			r, err := newDialector(c.Type, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, r)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "register read replicas")
		}
		lg.Info("database read replicas registered", zap.Int("count", len(replicas)))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.Type == "sqlite" && c.Path == memoryPath {
		// every connection to :memory: is a separate database, so keep exactly one alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
		sqlDB.SetConnMaxLifetime(util.DurationOr(c.ConnMaxLifetime, 30*time.Minute))
		sqlDB.SetConnMaxIdleTime(util.DurationOr(c.ConnMaxIdleTime, 10*time.Minute))
	}

	if c.Tracing {
		if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil {
			lg.Warn("gorm tracing plugin", zap.Error(err))
		}
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, errors.Wrap(err, "auto migrate")
		}
	}

	lg.Info("database connected", zap.String("type", c.Type))
	return db, nil
}

func newDialector(typ, dsn string) (gorm.Dialector, error) {
	switch typ {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", typ)
}

func dsnOf(c DatabaseConfig) string {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime)
	case "postgres", "postgresql":
		host, port := c.Host, 5432
		if h, p, err := net.SplitHostPort(c.Host); err == nil {
			host = h
			if n, err := strconv.Atoi(p); err == nil {
				port = n
			}
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			host, c.UserName, c.Password, c.Name, port)
	}

	if c.Path == memoryPath {
		return memoryPath
	}
	_ = fsutil.MkParentDir(c.Path)
	return c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
