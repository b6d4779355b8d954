package repository

import (
	"context"
	"corp_edu_backend/internal/apperr"
	"errors"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 把事务放进 context，仓储通过 conn 取用，业务层无需感知 gorm
type TxManager struct {
	DB *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{DB: db}
}

// WithinTransaction fn 返回错误时整体回滚；已在事务中时直接复用
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// wrap 统一转换 gorm 错误
func wrap(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("%s: record already exists", op)
	}
	return apperr.Persistence(op, err)
}
