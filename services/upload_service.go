package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventfriend_server/auth"
)

const (
	profileImagePrefix = "profile-images/"
	presignExpiry      = 5 * time.Minute
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadService hands out presigned S3 URLs for profile images.
type UploadService struct {
	presigner  *s3.PresignClient
	bucket     string
	region     string
	cdnBaseURL string
	now        func() time.Time
}

// UploadTicket is what the client needs to PUT an image and reference it
// afterwards.
type UploadTicket struct {
	UploadURL string `json:"url"`
	Key       string `json:"fileName"`
	PublicURL string `json:"publicUrl"`
	ExpiresAt string `json:"expiresAt"`
}

func NewUploadService(cfg aws.Config, bucket, cdnBaseURL string) *UploadService {
	return &UploadService{
		presigner:  s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:     bucket,
		region:     cfg.Region,
		cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/"),
		now:        time.Now,
	}
}

// GenerateUploadURL presigns a PUT for a new profile image of the caller.
func (s *UploadService) GenerateUploadURL(ctx context.Context, sess auth.Session, fileName, fileType string) (*UploadTicket, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if s.bucket == "" {
		return nil, fmt.Errorf("image uploads are not configured")
	}
	name := sanitizeFileName(fileName)
	if name == "" || fileType == "" {
		return nil, invalid("fileName and fileType are required")
	}
	if !imageTypes[strings.ToLower(fileType)] {
		return nil, invalid("only JPEG, PNG, GIF and WebP images can be uploaded")
	}

	now := s.now().UTC()
	key := profileImagePrefix + sess.UserID + "/" + now.Format("20060102150405") + "-" + name
	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	slog.Info("✅ Presigned profile image upload", "userId", sess.UserID, "key", key)
	return &UploadTicket{
		UploadURL: presigned.URL,
		Key:       key,
		PublicURL: s.PublicURL(key),
		ExpiresAt: now.Add(presignExpiry).Format(time.RFC3339),
	}, nil
}

// GenerateReadURL presigns a GET for a stored profile image.
func (s *UploadService) GenerateReadURL(ctx context.Context, sess auth.Session, key string) (string, error) {
	if !sess.Authenticated() {
		return "", ErrUnauthenticated
	}
	if !strings.HasPrefix(key, profileImagePrefix) || strings.Contains(key, "..") {
		return "", invalid("unknown image key")
	}
	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return presigned.URL, nil
}

// PublicURL is the stable URL a stored image is served from.
func (s *UploadService) PublicURL(key string) string {
	if s.cdnBaseURL != "" {
		return s.cdnBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
