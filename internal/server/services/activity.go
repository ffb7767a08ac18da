package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/activitydash/internal/server/config"
)

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	nowFunc = time.Now
)

// Export locates an uploaded chart snapshot.
type Export struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ActivityService serves the login/logout chart.
type ActivityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewActivityService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *ActivityService {
	return &ActivityService{
		db:          db,
		repomanager: m,
		config:      config,
	}
}

// DailyCounts returns per-day, per-kind event counts visible to userID:
// the caller's own events, or every user's when the caller is a superuser
// or the server is configured with the "all" scope.
func (s *ActivityService) DailyCounts(ctx context.Context, userID string) ([]models.DailyCount, error) {
	scope, err := s.scopeFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Activity(s.db).DailyCounts(ctx, scope)
}

// scopeFor returns the user filter for DailyCounts; "" means everybody.
func (s *ActivityService) scopeFor(ctx context.Context, userID string) (string, error) {
	if s.config.AllActivityVisible() {
		return "", nil
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IsSuperuser {
		return "", nil
	}
	return user.ID, nil
}

// ExportKey builds a date-partitioned object key for a new snapshot.
func ExportKey() string {
	d := nowFunc().UTC()
	return fmt.Sprintf("reports/%04d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ActivityService) getS3Clients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// Export uploads the caller-visible chart as JSON and returns its key with
// a presigned GET URL.
func (s *ActivityService) Export(ctx context.Context, userID string) (*Export, error) {
	counts, err := s.DailyCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("error encoding chart: %w", err)
	}

	client, presignClient, err := s.getS3Clients(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := ExportKey()

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading chart: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("error presigning chart: %w", err)
	}

	return &Export{Key: key, URL: req.URL}, nil
}
