package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedPhotoTypes       = []string{MimeImage}
	AllowedCertificateTypes = []string{MimePDF, MimeImage}
)

const (
	MaxPhotoSize       = 5 << 20
	MaxCertificateSize = 10 << 20
)

const DiscontinuedReason = "Training program discontinued"
