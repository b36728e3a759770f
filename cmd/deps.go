package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/lock"
	"github.com/vibast-solutions/ms-go-campaigns/app/provider"
	"github.com/vibast-solutions/ms-go-campaigns/app/queue"
	"github.com/vibast-solutions/ms-go-campaigns/app/repository"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
	"github.com/vibast-solutions/ms-go-campaigns/config"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// openDatabase returns nil when no DSN is configured.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.MySQLDSN == "" {
		return nil, nil
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MySQLMaxOpen)
	db.SetMaxIdleConns(cfg.MySQLMaxIdle)
	db.SetConnMaxLifetime(cfg.MySQLMaxLife)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// openRedis returns nil when no address is configured.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

func buildStore(db *sql.DB) service.Store {
	if db == nil {
		return repository.NewMemoryStore()
	}
	return repository.NewUploadRepository(db)
}

func buildLocker(cfg *config.Config, db *sql.DB, rdb *redis.Client) (lock.Locker, error) {
	switch cfg.LockBackend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis lock backend needs a redis connection")
		}
		return lock.NewRedisLocker(rdb), nil
	case "mysql":
		if db == nil {
			return nil, fmt.Errorf("mysql lock backend needs a database connection")
		}
		return lock.NewMySQLLocker(db), nil
	case "none":
		return lock.NewNopLocker(), nil
	default:
		return nil, fmt.Errorf("unsupported LOCK_BACKEND: %s", cfg.LockBackend)
	}
}

// buildPublisher keeps the interface nil when Redis is absent.
func buildPublisher(rdb *redis.Client) service.EventPublisher {
	if rdb == nil {
		return nil
	}
	return queue.NewEventProducer(rdb)
}

func buildTransport(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (campaign.Transport, error) {
	switch cfg.EmailProvider {
	case "", "smtp":
		return provider.NewSMTPTransport(cfg.SMTPTimeout), nil
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		return provider.NewSESTransport(awsCfg, cfg.SESSourceEmail), nil
	case "noop":
		return provider.NewNoopTransport(log), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER: %s", cfg.EmailProvider)
	}
}
