package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/container"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	pginfra "github.com/oksasatya/pastryjoy-api/internal/infrastructure/postgres"
	"github.com/oksasatya/pastryjoy-api/internal/router"
	"github.com/oksasatya/pastryjoy-api/internal/seed"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the PastryJoy database",
		SilenceUsage: true,
	}
	root.AddCommand(adminCmd(), catalogCmd(), reindexCmd())
	return root
}

// setup loads configuration, opens the pool and fills the container so the
// services are built exactly as the API builds them.
func setup(ctx context.Context) (*router.Services, *logrus.Logger, func(), error) {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetTx(pginfra.NewTxManager(pool, logger))
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL))

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; products are not indexed")
		} else {
			container.SetES(es)
		}
	}

	return router.BuildServices(), logger, pool.Close, nil
}

func adminCmd() *cobra.Command {
	var email, username, password, fullName string
	var generate bool
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generate {
				p, err := helpers.GenSecurePassword(16)
				if err != nil {
					return err
				}
				password = p
			}
			if password == "" {
				return fmt.Errorf("--password or --generate is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			svc, logger, done, err := setup(ctx)
			if err != nil {
				return err
			}
			defer done()

			u, err := svc.Users.CreateUser(ctx, application.RegisterInput{
				Email:    email,
				Username: username,
				Password: password,
				FullName: fullName,
			}, entity.RoleAdmin)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("admin created")
			if generate {
				fmt.Fprintf(cmd.OutOrStdout(), "password: %s\n", password)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@pastryjoy.local", "admin e-mail")
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&fullName, "full-name", "PastryJoy Admin", "display name")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a random password and print it")
	return cmd
}

func catalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load ingredients, recipes and products from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			c, err := seed.ParseCatalog(f)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			svc, logger, done, err := setup(ctx)
			if err != nil {
				return err
			}
			defer done()

			l := &seed.Loader{Ingredients: svc.Ingredients, Recipes: svc.Recipes, Products: svc.Products, Logger: logger}
			st, err := l.Load(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d ingredients, %d recipes, %d products (%d skipped)\n",
				st.Ingredients, st.Recipes, st.Products, st.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "db/seed/catalog.yaml", "catalog file")
	return cmd
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Elasticsearch product index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			svc, _, done, err := setup(ctx)
			if err != nil {
				return err
			}
			defer done()
			n, err := svc.Products.ReindexAll(ctx)
			if err != nil {
				if errors.Is(err, application.ErrNotConfigured) {
					return fmt.Errorf("set ELASTICSEARCH_ADDRS to reindex: %w", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products\n", n)
			return nil
		},
	}
}
