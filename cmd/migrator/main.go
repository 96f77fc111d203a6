package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/YusovID/barter-service/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

const defaultMigrationsTable = "schema_migrations"

type migrationCfg struct {
	DatabaseURL     string
	MigrationsPath  string
	MigrationsTable string
}

func main() {
	cfg, err := load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("can't create new migration: %v", err)
	}
	defer m.Close()

	var cmd string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "down":
		if err := down(m); err != nil {
			log.Fatal(err)
		}

		fmt.Println("migrations rolled back successfully")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("can't read schema version: %v", err)
		}

		fmt.Printf("schema version %d (dirty: %t)\n", version, dirty)
	case "steps", "force":
		n, err := intArg(os.Args)
		if err != nil {
			log.Fatal(err)
		}

		if cmd == "force" {
			err = m.Force(n)
		} else {
			err = m.Steps(n)
		}

		if err != nil {
			log.Fatalf("can't %s %d: %v", cmd, n, err)
		}

		fmt.Printf("%s %d done\n", cmd, n)
	case "up", "":
		if err := up(m); err != nil {
			log.Fatal(err)
		}

		fmt.Println("migrations applied successfully")
	default:
		log.Fatalf("unknown command %q, expected up, down, steps, force or version", cmd)
	}
}

// load reads the postgres section of the service config so both binaries share one file.
func load() (*migrationCfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env file: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		return nil, errors.New("MIGRATIONS_PATH is not set")
	}

	migrationsTable := os.Getenv("MIGRATIONS_TABLE")
	if migrationsTable == "" {
		migrationsTable = defaultMigrationsTable
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver != config.StoragePostgres {
		return nil, fmt.Errorf("storage driver is %q, migrations only apply to postgres", cfg.Storage.Driver)
	}

	return &migrationCfg{
		DatabaseURL:     databaseURL(cfg.Postgres, migrationsTable),
		MigrationsPath:  migrationsPath,
		MigrationsTable: migrationsTable,
	}, nil
}

func databaseURL(pg config.Postgres, migrationsTable string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(pg.Username, pg.Password),
		Host:   pg.Host + ":" + pg.Port,
		Path:   "/" + pg.Database,
	}

	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("x-migrations-table", migrationsTable)
	u.RawQuery = q.Encode()

	return u.String()
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no new migrations to apply")
			return nil
		}

		return fmt.Errorf("can't do migrations: %v", err)
	}

	return nil
}

func down(m *migrate.Migrate) error {
	if err := m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return errors.New("no migrations to roll back")
		}

		return fmt.Errorf("can't down migrations: %v", err)
	}

	return nil
}

// intArg parses the argument after the command, e.g. "steps -1" or "force 3".
func intArg(args []string) (int, error) {
	if len(args) < 3 {
		return 0, fmt.Errorf("%s needs a numeric argument", args[1])
	}

	n, err := strconv.Atoi(args[2])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %v", args[2], err)
	}

	return n, nil
}
