package main

import (
	"context"
	"fmt"

	"account-service/pkg/common/config"
	"account-service/pkg/core/account/model"
	"account-service/pkg/core/account/repository/dao"
	impl "account-service/pkg/core/account/repository/dao/impl"
	"account-service/pkg/core/account/service"
	"account-service/pkg/core/credential"
	"account-service/pkg/core/token"
	"account-service/pkg/web/router"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		hlog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())
	if err := cfg.Validate(); err != nil {
		hlog.Fatalf("Invalid configuration: %v", err)
	}

	repo, closeRepo, err := newRepository(context.Background(), cfg)
	if err != nil {
		hlog.Fatalf("Failed to initialize %s repository: %v", cfg.Database.Driver, err)
	}

	issuer, err := token.NewIssuer([]byte(cfg.Middleware.JWT.Secret),
		token.WithSigningMethod(cfg.Middleware.JWT.SigningMethod),
		token.WithIssuer(cfg.Middleware.JWT.Issuer),
	)
	if err != nil {
		hlog.Fatalf("Failed to initialize token issuer: %v", err)
	}

	hasher := credential.NewBcryptHasher(cfg.Hasher.BcryptCost)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.ServerBodyLimit()),
	)
	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		closeRepo(ctx)
	})

	router.RegisterAPIs(h, cfg, router.Dependencies{
		Accounts: service.NewStore(repo, hasher),
		Hasher:   hasher,
		Tokens:   issuer,
	})

	hlog.Infof("account service listening on %s (driver=%s env=%s)", cfg.Server.Address, cfg.Database.Driver, cfg.Env)
	h.Spin()
}

// newRepository 按配置打开存储后端，返回的函数负责释放连接
func newRepository(ctx context.Context, cfg *config.Config) (dao.AccountRepository, func(context.Context), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := cfg.InitMongo(ctx)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Database.Mongo.Database).Collection(cfg.Database.Mongo.Collection)
		repo, err := impl.NewMongoAccountRepository(ctx, coll)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				hlog.Warnf("mongo disconnect: %v", err)
			}
		}, nil

	case config.DriverMySQL:
		db, err := cfg.InitDB()
		if err != nil {
			return nil, nil, err
		}
		if err := model.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		return impl.NewGormAccountRepository(db), func(context.Context) {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil

	case config.DriverMemory:
		hlog.Warn("Using in-memory account repository; accounts are lost on restart")
		return impl.NewMemoryAccountRepository(), func(context.Context) {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
