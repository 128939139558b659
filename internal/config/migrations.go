package config

import "fmt"

func (s *Store) migrate() error {
	var migrations []string
	switch s.driver {
	case DriverPostgres:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS storage (
				item_key TEXT PRIMARY KEY,
				item_value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
		}
	case DriverMySQL:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS storage (
				item_key VARCHAR(191) PRIMARY KEY,
				item_value LONGTEXT NOT NULL,
				updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
			)`,
		}
	case DriverSQLServer:
		migrations = []string{
			`IF OBJECT_ID(N'storage', N'U') IS NULL
			CREATE TABLE storage (
				item_key NVARCHAR(191) PRIMARY KEY,
				item_value NVARCHAR(MAX) NOT NULL,
				updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
			)`,
		}
	default:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS storage (
				item_key TEXT PRIMARY KEY,
				item_value TEXT NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
