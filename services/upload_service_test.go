package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

func newTestUploadService(cdn string) *UploadService {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
	svc := NewUploadService(cfg, "eventfriend-images", cdn)
	svc.now = func() time.Time { return time.Date(2024, 12, 21, 14, 0, 0, 0, time.UTC) }
	return svc
}

func TestGenerateUploadURL(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService("")

	ticket, err := svc.GenerateUploadURL(ctx, alice, "../my photo.png", "image/png")
	if err != nil {
		t.Fatalf("GenerateUploadURL failed: %v", err)
	}
	if ticket.Key != "profile-images/alice/20241221140000-my-photo.png" {
		t.Errorf("key = %s", ticket.Key)
	}
	if ticket.PublicURL != "https://eventfriend-images.s3.us-east-1.amazonaws.com/"+ticket.Key {
		t.Errorf("publicUrl = %s", ticket.PublicURL)
	}
	u, err := url.Parse(ticket.UploadURL)
	if err != nil {
		t.Fatalf("bad upload url: %v", err)
	}
	if u.Query().Get("X-Amz-Signature") == "" || !strings.Contains(u.Path, "my-photo.png") {
		t.Errorf("upload url not presigned: %s", ticket.UploadURL)
	}

	if _, err := svc.GenerateUploadURL(ctx, alice, "notes.txt", "text/plain"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for non-image, got %v", err)
	}
	if _, err := svc.GenerateUploadURL(ctx, alice, "", "image/png"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestPublicURLUsesCDN(t *testing.T) {
	svc := newTestUploadService("https://ik.example.io/eventfriend/")
	if got := svc.PublicURL("profile-images/alice/x.png"); got != "https://ik.example.io/eventfriend/profile-images/alice/x.png" {
		t.Errorf("PublicURL = %s", got)
	}
}

func TestGenerateReadURL(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService("")

	if _, err := svc.GenerateReadURL(ctx, alice, "profile-images/alice/x.png"); err != nil {
		t.Fatalf("GenerateReadURL failed: %v", err)
	}
	if _, err := svc.GenerateReadURL(ctx, alice, "secrets/x.png"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
