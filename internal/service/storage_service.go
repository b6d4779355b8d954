package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/util"
	"corp_edu_backend/pkg/logger"
)

// StorageProvider 定义通用存储接口，key 为存储内的相对路径
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	UploadFile(ctx context.Context, key string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(key string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(key))
	rel, err := filepath.Rel(p.Config.LocalPath, dst)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return dst, nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Upload(ctx, key, src, -1, contentType)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	dst, err := p.path(key)
	if err != nil {
		return err
	}
	return os.Remove(dst)
}

func (p *LocalStorageProvider) GetURL(key string) string {
	return strings.TrimSuffix(p.Config.PublicURL, "/") + "/uploads/" + key
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(key string) string {
	return strings.TrimSuffix(p.Config.PublicURL, "/") + "/" + p.Config.MinioBucket + "/" + key
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *OSSStorageProvider) UploadFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObjectFromFile(key, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, key string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key)
}

func (p *OSSStorageProvider) GetURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, key)
}

// Upload 一次上传的文件，Body 需可回退以便先检测文件头
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

// VideoUpload 上传视频的地址和时长（秒），ffprobe 不可用时时长为 0
type VideoUpload struct {
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type FileUpload struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	tempDir  string
}

// NewStorageService 远端存储初始化失败时退回本地存储
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	var provider StorageProvider
	var err error
	switch cfg.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(cfg)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(cfg)
	}
	if err != nil {
		logger.Log.Warn("Object storage unavailable, falling back to local disk", zap.String("type", cfg.Type), zap.Error(err))
		provider = nil
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: cfg}
	}
	return &StorageService{Provider: provider, tempDir: filepath.Join(cfg.LocalPath, "temp")}
}

func (s *StorageService) newKey(prefix, filename string) string {
	return path.Join(prefix, model.GenerateUUID()+strings.ToLower(filepath.Ext(filename)))
}

// sniff 校验大小和文件头，返回检测到的 MIME 类型
func sniff(up Upload, maxSize int64, allowed []string) (string, error) {
	if up.Size > maxSize {
		return "", apperr.Validation("file is too large (max %d MB)", maxSize>>20)
	}
	mime, err := util.ValidateMimeType(up.Body, allowed)
	if err != nil {
		return "", apperr.Validation("unsupported file type: %s", mime)
	}
	if _, err := up.Body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mime, nil
}

// SaveImage 课程封面和头像
func (s *StorageService) SaveImage(ctx context.Context, prefix string, up Upload) (string, error) {
	if !util.HasExtension(up.Filename, util.AllowedImageExtensions) {
		return "", apperr.Validation("image must be one of %s", strings.Join(util.AllowedImageExtensions, ", "))
	}
	mime, err := sniff(up, util.MaxImageSize, []string{util.MimeImage})
	if err != nil {
		return "", err
	}
	return s.Provider.Upload(ctx, s.newKey(prefix, up.Filename), up.Body, up.Size, mime)
}

func (s *StorageService) SaveTextbook(ctx context.Context, up Upload) (*FileUpload, error) {
	if !util.HasExtension(up.Filename, []string{".pdf"}) {
		return nil, apperr.Validation("textbook must be a PDF file")
	}
	if _, err := sniff(up, util.MaxTextbookSize, []string{util.MimePDF}); err != nil {
		return nil, err
	}
	url, err := s.Provider.Upload(ctx, s.newKey("textbooks", up.Filename), up.Body, up.Size, util.MimePDF)
	if err != nil {
		return nil, err
	}
	return &FileUpload{URL: url, Name: filepath.Base(up.Filename)}, nil
}

// SaveVideo 先落地到临时文件以便 ffprobe 读取时长
func (s *StorageService) SaveVideo(ctx context.Context, up Upload) (*VideoUpload, error) {
	if !util.HasExtension(up.Filename, util.AllowedVideoExtensions) {
		return nil, apperr.Validation("video must be one of %s", strings.Join(util.AllowedVideoExtensions, ", "))
	}
	mime, err := sniff(up, util.MaxVideoSize, []string{util.MimeVideo})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(s.tempDir, "video-*"+filepath.Ext(up.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, up.Body); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	var duration int
	if util.FFprobeAvailable() {
		duration, err = util.ProbeVideoDuration(tmp.Name())
		if err != nil {
			logger.Log.Warn("Probe video duration failed", zap.String("file", up.Filename), zap.Error(err))
		}
	}

	url, err := s.Provider.UploadFile(ctx, s.newKey("videos", up.Filename), tmp.Name(), mime)
	if err != nil {
		return nil, err
	}
	return &VideoUpload{URL: url, DurationSeconds: float64(duration)}, nil
}

// KeyOf 把本存储生成的地址还原为 key，外部地址返回 false
func (s *StorageService) KeyOf(url string) (string, bool) {
	base := s.Provider.GetURL("")
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (s *StorageService) Delete(ctx context.Context, url string) error {
	key, ok := s.KeyOf(url)
	if !ok {
		return apperr.Validation("url %q is not managed by this storage", url)
	}
	return s.Provider.Delete(ctx, key)
}

// DeleteBestEffort 清理失败只记日志
func (s *StorageService) DeleteBestEffort(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if _, ok := s.KeyOf(url); !ok {
			continue
		}
		if err := s.Delete(ctx, url); err != nil {
			logger.Log.Warn("Delete stored object failed", zap.String("url", url), zap.Error(err))
		}
	}
}
