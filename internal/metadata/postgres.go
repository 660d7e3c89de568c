package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS option_set (
	uid        TEXT PRIMARY KEY,
	value_type TEXT NOT NULL,
	options    TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS data_element (
	uid        TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	value_type TEXT NOT NULL,
	option_set TEXT REFERENCES option_set (uid)
);
CREATE TABLE IF NOT EXISTS tracked_entity_attribute (
	uid        TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	value_type TEXT NOT NULL,
	option_set TEXT REFERENCES option_set (uid)
);
CREATE TABLE IF NOT EXISTS program_stage (
	uid                 TEXT PRIMARY KEY,
	name                TEXT NOT NULL DEFAULT '',
	validation_strategy TEXT NOT NULL DEFAULT 'ON_UPDATE_AND_INSERT',
	data_elements       TEXT[] NOT NULL DEFAULT '{}'
);`

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the metadata tables if they do not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create metadata schema: %w", err)
	}
	return nil
}

// ListProgramStages retrieves all program stages from the database.
func (p *PostgresStore) ListProgramStages(ctx context.Context) ([]ProgramStage, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT uid, name, validation_strategy, data_elements FROM program_stage ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanProgramStage)
}

// ListDataElements retrieves all data elements from the database.
func (p *PostgresStore) ListDataElements(ctx context.Context) ([]DataElement, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT uid, name, value_type, COALESCE(option_set, '') FROM data_element ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DataElement, error) {
		var de DataElement
		var valueType string
		err := row.Scan(&de.UID, &de.Name, &valueType, &de.OptionSet)
		de.ValueType = ValueType(valueType)
		return de, err
	})
}

// ListAttributes retrieves all tracked entity attributes from the database.
func (p *PostgresStore) ListAttributes(ctx context.Context) ([]TrackedEntityAttribute, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT uid, name, value_type, COALESCE(option_set, '') FROM tracked_entity_attribute ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TrackedEntityAttribute, error) {
		var a TrackedEntityAttribute
		var valueType string
		err := row.Scan(&a.UID, &a.Name, &valueType, &a.OptionSet)
		a.ValueType = ValueType(valueType)
		return a, err
	})
}

// ListOptionSets retrieves all option sets from the database.
func (p *PostgresStore) ListOptionSets(ctx context.Context) ([]OptionSet, error) {
	rows, err := p.pool.Query(ctx, `SELECT uid, value_type, options FROM option_set ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (OptionSet, error) {
		var os OptionSet
		var valueType string
		err := row.Scan(&os.UID, &valueType, &os.Options)
		os.ValueType = ValueType(valueType)
		return os, err
	})
}

// UpsertProgramStage creates or replaces a program stage in the database.
func (p *PostgresStore) UpsertProgramStage(ctx context.Context, stage ProgramStage) error {
	strategy := stage.ValidationStrategy
	if strategy == "" {
		strategy = ValidationOnUpdateAndInsert
	}
	dataElements := stage.DataElements
	if dataElements == nil {
		dataElements = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO program_stage (uid, name, validation_strategy, data_elements)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO UPDATE
		SET name = EXCLUDED.name,
		    validation_strategy = EXCLUDED.validation_strategy,
		    data_elements = EXCLUDED.data_elements`,
		stage.UID, stage.Name, string(strategy), dataElements)
	return err
}

// UpsertDataElement creates or replaces a data element in the database.
func (p *PostgresStore) UpsertDataElement(ctx context.Context, de DataElement) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO data_element (uid, name, value_type, option_set)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (uid) DO UPDATE
		SET name = EXCLUDED.name,
		    value_type = EXCLUDED.value_type,
		    option_set = EXCLUDED.option_set`,
		de.UID, de.Name, string(de.ValueType), de.OptionSet)
	return err
}

// UpsertAttribute creates or replaces a tracked entity attribute in the database.
func (p *PostgresStore) UpsertAttribute(ctx context.Context, attr TrackedEntityAttribute) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO tracked_entity_attribute (uid, name, value_type, option_set)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (uid) DO UPDATE
		SET name = EXCLUDED.name,
		    value_type = EXCLUDED.value_type,
		    option_set = EXCLUDED.option_set`,
		attr.UID, attr.Name, string(attr.ValueType), attr.OptionSet)
	return err
}

// UpsertOptionSet creates or replaces an option set in the database.
func (p *PostgresStore) UpsertOptionSet(ctx context.Context, os OptionSet) error {
	options := os.Options
	if options == nil {
		options = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO option_set (uid, value_type, options)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO UPDATE
		SET value_type = EXCLUDED.value_type,
		    options = EXCLUDED.options`,
		os.UID, string(os.ValueType), options)
	return err
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanProgramStage(row pgx.CollectableRow) (ProgramStage, error) {
	var stage ProgramStage
	var strategy string
	err := row.Scan(&stage.UID, &stage.Name, &strategy, &stage.DataElements)
	stage.ValidationStrategy = ValidationStrategy(strategy)
	return stage, err
}
