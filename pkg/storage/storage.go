package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KamineHiro/shift-maker/config"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("对象不存在")

// Storage 归档快照对象存储接口
type Storage interface {
	// Put 写入对象，同名覆盖
	Put(ctx context.Context, key string, content io.Reader, contentType string) error
	// Get 读取对象，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象，不存在时视为成功
	Delete(ctx context.Context, key string) error
	// Exists 对象是否存在
	Exists(ctx context.Context, key string) (bool, error)
}

// New 按配置创建存储实现
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		path := cfg.LocalPath
		if path == "" {
			path = "./snapshots"
		}
		return NewLocalStorage(path)
	case "s3":
		if cfg.S3.Bucket == "" || cfg.S3.Region == "" {
			return nil, fmt.Errorf("s3 存储需要配置 storage.s3.bucket 与 storage.s3.region")
		}
		return NewS3Storage(ctx, cfg.S3.Bucket, cfg.S3.Region)
	default:
		return nil, fmt.Errorf("未知的存储类型: %s", cfg.Type)
	}
}

// SnapshotKey 归档期间快照的对象键
func SnapshotKey(groupID, startDate string) string {
	return fmt.Sprintf("snapshots/%s/%s.xlsx", sanitize(groupID), sanitize(startDate))
}

func sanitize(s string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	return r.Replace(s)
}
