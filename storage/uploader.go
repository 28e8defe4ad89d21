// Package storage — загрузка публичных файлов (логотипы команд) в
// S3-совместимое объектное хранилище.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// TeamLogoKey строит ключ объекта для логотипа команды. Временная метка
// в ключе делает каждую загрузку новым объектом, чтобы CDN-кеш старой
// версии не пережил замену.
func TeamLogoKey(teamID int, ext string) string {
	return fmt.Sprintf("teams/%d/logo-%d%s", teamID, time.Now().Unix(), ext)
}
