package migration

import (
	"fmt"

	"github.com/damoang/notion-gateway/internal/domain"
	"gorm.io/gorm"
)

// models 게이트웨이가 소유하는 테이블
func models() []interface{} {
	return []interface{}{
		&domain.Tenant{},
		&domain.Block{},
		&domain.Collection{},
		&domain.CollectionView{},
	}
}

// Run executes AutoMigrate for the tenant and content tables.
// Safe to run multiple times.
func Run(db *gorm.DB) error {
	// 테이블 없으면 생성, 있으면 누락된 컬럼과 인덱스만 추가
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Tables returns the table names Run manages
func Tables(db *gorm.DB) ([]string, error) {
	names := make([]string, 0, len(models()))
	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}
