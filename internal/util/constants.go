package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimePDF   = "application/pdf"

	MaxImageSize    = 5 << 20
	MaxTextbookSize = 50 << 20
	MaxVideoSize    = 1 << 30
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)
