package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testConfig() Config {
	return Config{
		Endpoint:         "http://minio:9000",
		ExternalEndpoint: "http://localhost:9000",
		AccessKeyID:      "minioadmin",
		SecretAccessKey:  "minioadmin",
		Region:           "us-east-1",
		UsePathStyle:     true,
		Bucket:           "uploads",
	}
}

// Presigning is pure signing, no network involved, so the URL shape can
// be checked without a running MinIO.
func TestPresignGet_SignsAgainstExternalEndpoint(t *testing.T) {
	c, err := New(context.Background(), testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	url, err := c.PresignGet(context.Background(), "uploads/u1/f1.png", 5*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	if !strings.HasPrefix(url, "http://localhost:9000/") {
		t.Fatalf("presigned URL should use the external endpoint, got %s", url)
	}
	if !strings.Contains(url, "uploads/u1/f1.png") {
		t.Fatalf("presigned URL missing object key: %s", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("presigned URL missing signature: %s", url)
	}
	if !strings.Contains(url, "X-Amz-Expires=300") {
		t.Fatalf("presigned URL missing expiry: %s", url)
	}
}

func TestNew_FallsBackToInternalEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.ExternalEndpoint = ""

	c, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	url, err := c.PresignGet(context.Background(), "k", time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://minio:9000/") {
		t.Fatalf("expected internal endpoint, got %s", url)
	}
}
