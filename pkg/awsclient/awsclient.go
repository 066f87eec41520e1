package awsclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultRegion       = "us-east-1"
)

// Client holds the AWS service clients sharing one configuration: the bucket
// store, the image analysis and the text analysis services.
type Client struct {
	connAttempts int
	connTimeout  time.Duration

	bucket       string
	region       string
	accessKey    string
	secretKey    string
	s3Endpoint   string
	usePathStyle bool

	S3          *s3.Client
	Rekognition *rekognition.Client
	Comprehend  *comprehend.Client
}

// New connects and checks that bucket is reachable.
func New(ctx context.Context, bucket string, opts ...Option) (*Client, error) {
	c := &Client{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		region:       _defaultRegion,
		bucket:       bucket,
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	for c.connAttempts > 0 {
		err = c.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("AWS client is trying to connect, attempts left: %d", c.connAttempts)

		time.Sleep(c.connTimeout)

		c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("AWSClient - New - connAttempts == 0: %w", err)
	}

	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(c.region),
	}
	if c.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKey, c.secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("AWSClient - config.LoadDefaultConfig: %w", err)
	}

	c.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = c.usePathStyle
		if c.s3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.s3Endpoint)
		}
	})
	c.Rekognition = rekognition.NewFromConfig(cfg)
	c.Comprehend = comprehend.NewFromConfig(cfg)

	// check connection
	_, err = c.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("AWSClient - c.S3.HeadBucket: %w", err)
	}

	return nil
}
