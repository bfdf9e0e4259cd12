package model

import (
	"time"

	"gorm.io/gorm"
)

// Account 持久化的账户记录。PasswordHash 只在登录校验的查询中加载，从不序列化。
// email 与 username 使用二进制排序规则，MySQL 默认的 _ci 规则会让唯一索引忽略大小写
type Account struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"type:varchar(255) COLLATE utf8mb4_bin;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"type:varchar(30) COLLATE utf8mb4_bin;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Field        string    `gorm:"type:varchar(64);not null;default:Other" json:"field"`
	CreatedAt    time.Time `gorm:"index;autoCreateTime" json:"createdAt"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// Public 返回不含密码哈希的副本
func (a Account) Public() Account {
	a.PasswordHash = ""
	return a
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{})
}

// Draft 注册输入（明文密码）
type Draft struct {
	Email    string
	Username string
	Password string
	Field    string
}

const FieldOther = "Other"

// Fields 允许的方向取值
var Fields = []string{
	"GenAI",
	"Agentic AI",
	"Computer Vision",
	"Natural Language Processing",
	"Machine Learning",
	"Coding Languages",
	"Distributed Systems",
	"Quantum Computing",
	FieldOther,
}

func IsValidField(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}
