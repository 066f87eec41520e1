package awsclient

import "time"

type Option func(c *Client)

func ConnAttempts(attempts int) Option {
	return func(c *Client) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connTimeout = timeout
	}
}

func Region(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// StaticCredentials replaces the default credential chain.
func StaticCredentials(accessKey, secretKey string) Option {
	return func(c *Client) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

// S3Endpoint points only the S3 client at an S3-compatible store.
func S3Endpoint(endpoint string) Option {
	return func(c *Client) {
		c.s3Endpoint = endpoint
	}
}

func UsePathStyle(use bool) Option {
	return func(c *Client) {
		c.usePathStyle = use
	}
}
