package sqlstore

import (
	"context"
	"errors"
	"strings"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db     DB
	logger *zap.Logger
}

func New(db DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Constructor binds the relational strategy to this store.
func (s *Store) Constructor() strategy.Constructor {
	return func(data domain.Record, opts strategy.Options) (strategy.Strategy, error) {
		if s.db == nil {
			return nil, strategy.ErrNoBackend
		}
		return &relationalStrategy{Base: strategy.NewBase(data, opts), store: s}, nil
	}
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// columns returns the quoted projection, "*" when every column is wanted.
func columns(fields []string) []string {
	if len(fields) == 0 {
		return []string{"*"}
	}

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = ident(f)
	}
	return cols
}

func quoted(values domain.Record, skip string) map[string]any {
	clauses := make(map[string]any, len(values))
	for key, value := range values {
		if key == skip {
			continue
		}
		clauses[ident(key)] = value
	}
	return clauses
}

// query runs a built statement and collects every row as a record.
func (s *Store) query(ctx context.Context, b sq.Sqlizer) ([]domain.Record, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sql query", zap.String("sql", sql), zap.Int("args", len(args)))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, len(maps))
	for i, m := range maps {
		records[i] = domain.Record(m)
	}
	return records, nil
}

// first runs b and returns its first row, nil when there is none.
func (s *Store) first(ctx context.Context, b sq.Sqlizer) (domain.Record, error) {
	records, err := s.query(ctx, b)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (s *Store) selectBuilder(opts strategy.Options) sq.SelectBuilder {
	b := psql.Select(columns(opts.Fields)...).From(ident(opts.CollectionName()))
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}
	return b
}

func (s *Store) findAll(ctx context.Context, opts strategy.Options) ([]domain.Record, error) {
	return s.query(ctx, s.selectBuilder(opts))
}

func (s *Store) findByID(ctx context.Context, opts strategy.Options, id any) ([]domain.Record, error) {
	return s.query(ctx, s.selectBuilder(opts).Where(sq.Eq{ident(opts.IDField): id}))
}

func (s *Store) insert(ctx context.Context, opts strategy.Options, value domain.Record) (domain.Record, error) {
	returning := "RETURNING " + strings.Join(columns(opts.Fields), ", ")
	table := ident(opts.CollectionName())

	if len(value) == 0 {
		return s.first(ctx, sq.Expr("INSERT INTO "+table+" DEFAULT VALUES "+returning))
	}

	return s.first(ctx, psql.Insert(table).SetMap(quoted(value, "")).Suffix(returning))
}

// update sets every column of patch but the id on the row with id. A nil record means no row
// matched.
func (s *Store) update(ctx context.Context, opts strategy.Options, id any, patch domain.Record) (domain.Record, error) {
	where := sq.Eq{ident(opts.IDField): id}
	set := quoted(patch, opts.IDField)

	if len(set) == 0 {
		return s.first(ctx, s.selectBuilder(opts).Where(where))
	}

	returning := "RETURNING " + strings.Join(columns(opts.Fields), ", ")
	return s.first(ctx, psql.Update(ident(opts.CollectionName())).SetMap(set).Where(where).Suffix(returning))
}

// remove deletes the row with id and returns its id, nil when no row matched.
func (s *Store) remove(ctx context.Context, opts strategy.Options, id any) (any, error) {
	idCol := ident(opts.IDField)

	sql, args, err := psql.Delete(ident(opts.CollectionName())).
		Where(sq.Eq{idCol: id}).
		Suffix("RETURNING " + idCol).
		ToSql()
	if err != nil {
		return nil, err
	}

	var deleted any
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return deleted, nil
}

func (s *Store) exists(ctx context.Context, opts strategy.Options, field string, value any) (bool, error) {
	sql, args, err := psql.Select("1").
		From(ident(opts.CollectionName())).
		Where(sq.Eq{ident(field): value}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
