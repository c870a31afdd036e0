package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raushankrgupta/club-feedback/models"
)

// ObjectStore is the part of the S3 client the exporter needs.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner signs GET requests for exported objects.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest is the subset of the signed request returned to callers.
type PresignedRequest struct {
	URL string
}

type s3Presigner struct {
	client *s3.PresignClient
}

func (p s3Presigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// Exporter writes feedback snapshots to an S3 bucket for human review.
type Exporter struct {
	objects   ObjectStore
	presigner Presigner
	bucket    string
}

// NewExporter loads the default AWS config for region.
func NewExporter(ctx context.Context, region, bucket string) (*Exporter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return NewExporterWithClients(client, s3Presigner{client: s3.NewPresignClient(client)}, bucket), nil
}

// NewExporterWithClients builds an exporter around explicit clients.
func NewExporterWithClients(objects ObjectStore, presigner Presigner, bucket string) *Exporter {
	return &Exporter{objects: objects, presigner: presigner, bucket: bucket}
}

// ExportKey is the object key for a snapshot taken at t.
func ExportKey(t time.Time) string {
	return fmt.Sprintf("feedback-exports/%s.json", t.UTC().Format("20060102T150405Z"))
}

// Export uploads entries as a JSON array under key and returns a one hour presigned URL.
func (e *Exporter) Export(ctx context.Context, key string, entries []models.FeedbackEntry) (string, error) {
	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	_, err = e.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export to S3: %w", err)
	}

	req, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return req.URL, nil
}
