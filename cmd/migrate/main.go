package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/waitlist/backend/internal/config"
	"github.com/waitlist/backend/internal/logging"
	"github.com/waitlist/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations
  status      list applied and pending migrations
  reset       drop every table and load the consolidated schema
  fresh       drop every table and replay all migrations in order`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg, err := loadConfig()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: findMigrationDir()}

	switch cmd {
	case "":
		err = m.incremental(ctx)
	case "status":
		err = m.status(ctx)
	case "reset":
		if err = m.dropAll(ctx); err == nil {
			err = m.consolidated(ctx)
		}
	case "fresh":
		if err = m.dropAll(ctx); err == nil {
			err = m.incremental(ctx)
		}
	default:
		usage()
	}
	if err != nil {
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

// loadConfig reads the YAML file named by CONFIG_PATH, if set, and then the
// environment. Settings the server alone needs are not validated here.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.ParseFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ParseEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles returns the *.up.sql migration names in dir, sorted, without the suffix.
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, strings.TrimSuffix(e.Name(), ".up.sql"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// pending returns the names not in applied, keeping order.
func pending(all []string, applied map[string]bool) []string {
	var out []string
	for _, name := range all {
		if !applied[name] {
			out = append(out, name)
		}
	}
	return out
}

type migrator struct {
	pool *pgxpool.Pool
	dir  string
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, "SELECT name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

func (m *migrator) plan(ctx context.Context) (all, todo []string, err error) {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	all, err = collectUpFiles(m.dir)
	if err != nil {
		return nil, nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return all, pending(all, done), nil
}

// incremental applies each pending migration in its own transaction.
func (m *migrator) incremental(ctx context.Context) error {
	_, todo, err := m.plan(ctx)
	if err != nil {
		return err
	}
	for _, name := range todo {
		sql, err := os.ReadFile(filepath.Join(m.dir, name+".up.sql"))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		slog.Info("migration applied", "migration", name)
	}

	if len(todo) == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", len(todo))
	}
	return nil
}

func (m *migrator) status(ctx context.Context) error {
	all, todo, err := m.plan(ctx)
	if err != nil {
		return err
	}
	waiting := make(map[string]bool, len(todo))
	for _, name := range todo {
		waiting[name] = true
	}
	for _, name := range all {
		state := "applied"
		if waiting[name] {
			state = "pending"
		}
		fmt.Printf("%-8s %s\n", state, name)
	}
	return nil
}

func (m *migrator) execFile(ctx context.Context, filename string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("exec %s: %w", filename, err)
	}
	return nil
}

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	if err := m.execFile(ctx, "000_drop_all.sql"); err != nil {
		return err
	}
	slog.Info("all tables dropped")
	return nil
}

// consolidated loads the single-file schema and marks every migration applied.
func (m *migrator) consolidated(ctx context.Context) error {
	slog.Info("applying consolidated schema")
	if err := m.execFile(ctx, "000_consolidated.sql"); err != nil {
		return err
	}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	names, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return fmt.Errorf("mark %s: %w", name, err)
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(names))
	return nil
}
