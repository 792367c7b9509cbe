package cache

import "fmt"

var (
	DialectMySQL  Dialect = mysqlDialect{}
	DialectSQLite Dialect = sqliteDialect{}
)

// Dialect 不同数据库 upsert 的写法不一样
type Dialect interface {
	// upsert 生成插入或者更新 name,data,expires_at 三列的语句
	upsert(table string) string
}

type mysqlDialect struct{}

func (m mysqlDialect) upsert(table string) string {
	return fmt.Sprintf("INSERT INTO `%s`(`name`,`data`,`expires_at`) VALUES (?,?,?)"+
		" ON DUPLICATE KEY UPDATE `data`=VALUES(`data`),`expires_at`=VALUES(`expires_at`)", table)
}

type sqliteDialect struct{}

func (s sqliteDialect) upsert(table string) string {
	return fmt.Sprintf("INSERT INTO `%s`(`name`,`data`,`expires_at`) VALUES (?,?,?)"+
		" ON CONFLICT(`name`) DO UPDATE SET `data`=excluded.`data`,`expires_at`=excluded.`expires_at`", table)
}
