package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService stores gift artwork and user avatars in a DigitalOcean
// Spaces bucket (S3-compatible).
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	GiftRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, giftRoot string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		GiftRoot: strings.Trim(giftRoot, "/"),
	}, nil
}

func (s *SpacesService) giftKey(giftID string) string {
	if s.GiftRoot == "" {
		return fmt.Sprintf("gifts/%s.png", giftID)
	}
	return fmt.Sprintf("%s/gifts/%s.png", s.GiftRoot, giftID)
}

func (s *SpacesService) avatarKey(userID string) string {
	if s.GiftRoot == "" {
		return fmt.Sprintf("avatars/%s.jpg", userID)
	}
	return fmt.Sprintf("%s/avatars/%s.jpg", s.GiftRoot, userID)
}

// UploadGiftArtwork stores the artwork shown next to an auction's gift.
func (s *SpacesService) UploadGiftArtwork(ctx context.Context, giftID string, data []byte, contentType string) error {
	key := s.giftKey(giftID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         "public-read",
	})
	if err != nil {
		return fmt.Errorf("failed to upload gift artwork %s: %w", giftID, err)
	}
	return nil
}

// UploadAvatar stores a user's profile image.
func (s *SpacesService) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) error {
	key := s.avatarKey(userID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         "public-read",
	})
	if err != nil {
		return fmt.Errorf("failed to upload avatar for %s: %w", userID, err)
	}
	return nil
}

// GiftArtworkURL is the public URL the web surface hands to clients.
func (s *SpacesService) GiftArtworkURL(giftID string) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, s.giftKey(giftID))
}

// AvatarURL is the public URL of a user's profile image.
func (s *SpacesService) AvatarURL(userID string) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, s.avatarKey(userID))
}

// DeleteGiftArtwork removes a gift's artwork, e.g. after a bad upload.
func (s *SpacesService) DeleteGiftArtwork(ctx context.Context, giftID string) error {
	key := s.giftKey(giftID)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete gift artwork %s: %w", giftID, err)
	}
	return nil
}
