package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ Cache = &SQLCache{}

type SQLCacheOption func(s *SQLCache)

// SQLCache 把快照存到数据库的一张表里
// 表结构: name 主键, data 快照内容, expires_at 过期时间的 unix 纳秒, 0 代表永不过期
type SQLCache struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

func NewSQLCache(db *sql.DB, opts ...SQLCacheOption) *SQLCache {
	res := &SQLCache{
		db:      db,
		table:   "snapshots",
		dialect: DialectMySQL,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func SQLCacheWithTable(table string) SQLCacheOption {
	return func(s *SQLCache) {
		s.table = table
	}
}

func SQLCacheWithDialect(dialect Dialect) SQLCacheOption {
	return func(s *SQLCache) {
		s.dialect = dialect
	}
}

// CreateTable 表不存在就创建
func (s *SQLCache) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s`("+
		"`name` VARCHAR(255) NOT NULL PRIMARY KEY,"+
		"`data` LONGBLOB NOT NULL,"+
		"`expires_at` BIGINT NOT NULL DEFAULT 0)", s.table))
	return err
}

func (s *SQLCache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	var dl int64
	if expiration > 0 {
		dl = time.Now().Add(expiration).UnixNano()
	}
	_, err := s.db.ExecContext(ctx, s.dialect.upsert(s.table), key, val, dl)
	return err
}

func (s *SQLCache) Get(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT `data`,`expires_at` FROM `%s` WHERE `name`=?", s.table), key)
	var data []byte
	var dl int64
	err := row.Scan(&data, &dl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	if dl != 0 && dl < time.Now().UnixNano() {
		return nil, ErrKeyNotFound
	}
	return data, nil
}

func (s *SQLCache) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM `%s` WHERE `name`=?", s.table), key)
	return err
}
