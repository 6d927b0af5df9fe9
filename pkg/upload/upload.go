package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("不支持的图片格式")

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// SaveFunc 由调用方提供的落盘函数（gin 下即 c.SaveUploadedFile）
type SaveFunc func(file *multipart.FileHeader, dst string) error

// LocalStorage 本地磁盘图片存储。
// 文件名 = 毫秒时间戳 + uuid + 原扩展名，避免覆盖同名上传。
type LocalStorage struct {
	dir     string // 落盘目录
	urlBase string // 对外访问前缀，如 /static/uploads
}

// NewLocalStorage 创建本地存储并确保目录存在
func NewLocalStorage(dir, urlBase string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// Dir 落盘目录（静态路由挂载用）
func (s *LocalStorage) Dir() string { return s.dir }

// Store 保存上传文件并返回访问 URL
func (s *LocalStorage) Store(file *multipart.FileHeader, save SaveFunc) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	if err := save(file, filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return s.urlBase + "/" + name, nil
}
