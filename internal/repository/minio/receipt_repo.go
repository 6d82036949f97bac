package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const receiptContentType = "application/json"

// ReceiptRepo хранит JSON-чеки оплаченных заказов в MinIO.
type ReceiptRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewReceiptRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReceiptRepo {
	return &ReceiptRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload кладёт чек под ключом key. Повторная загрузка перезаписывает объект.
func (r *ReceiptRepo) Upload(ctx context.Context, key string, data []byte) error {
	_, err := r.mc.PutObject(ctx, r.cfg.BucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: receiptContentType,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (r *ReceiptRepo) Delete(ctx context.Context, key string) error {
	if err := r.mc.RemoveObject(ctx, r.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
