package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/google/uuid"
)

// Media kinds a client may upload before registering or updating a profile.
const (
	MediaAvatar     = "avatar"
	MediaCoverImage = "coverImage"
)

const uploadURLTTL = 15 * time.Minute

// Seams over the AWS SDK so tests can run without an S3 endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Upload is a presigned PUT the client uses to send a file straight to
// object storage. Key is what the client later submits as avatar or cover
// image.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MediaService struct {
	config *config.Config
	now    func() time.Time
}

func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{config: cfg, now: time.Now}
}

// PresignUpload returns a presigned PUT for a new object of the given kind.
func (s *MediaService) PresignUpload(ctx context.Context, kind string) (*Upload, error) {
	if kind != MediaAvatar && kind != MediaCoverImage {
		return nil, common.Validation(fmt.Sprintf("unsupported media kind %q", kind))
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, common.Internal(fmt.Errorf("s3 config: %w", err))
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(kind)

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return nil, common.Internal(fmt.Errorf("presign put: %w", err))
	}

	return &Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: s.now().Add(uploadURLTTL),
	}, nil
}

func (s *MediaService) storageKey(kind string) string {
	d := s.now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", kind, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}
