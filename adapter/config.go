package adapter

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/strata-db/strata/dialect"
	"github.com/strata-db/strata/dialect/sql"
)

// A Descriptor is a normalized connection description: which dialect, which
// data source, and the slow-statement threshold. Normalization happens once
// and is memoized; recomputing it is idempotent, so no locking guards the
// flag.
type Descriptor struct {
	Dialect       string        `yaml:"dialect"`
	DSN           string        `yaml:"dsn"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`

	normalized bool
}

// DescriptorFromYAML parses and normalizes a YAML connection document:
//
//	dialect: postgres
//	dsn: postgres://app@db/app?sslmode=disable
//	slow_threshold: 250ms
func DescriptorFromYAML(doc []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("adapter: parse descriptor: %w", err)
	}
	if err := d.Normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Normalize validates the descriptor and fills defaults.
func (d *Descriptor) Normalize() error {
	if d.normalized {
		return nil
	}
	switch d.Dialect {
	case dialect.MySQL, dialect.SQLite, dialect.Postgres:
	case "":
		return errors.New("adapter: descriptor requires a dialect")
	default:
		return fmt.Errorf("adapter: unsupported dialect %q", d.Dialect)
	}
	if d.DSN == "" {
		return errors.New("adapter: descriptor requires a dsn")
	}
	if d.SlowThreshold == 0 {
		d.SlowThreshold = 100 * time.Millisecond
	}
	d.normalized = true
	return nil
}

// Open connects per the descriptor and wraps the driver with statistics
// collection and slow-statement logging.
func (d *Descriptor) Open() (*sql.StatsDriver, error) {
	if err := d.Normalize(); err != nil {
		return nil, err
	}
	drv, err := sql.Open(d.Dialect, d.DSN)
	if err != nil {
		return nil, err
	}
	return sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(d.SlowThreshold),
		sql.WithSlowQueryLog(),
	), nil
}
