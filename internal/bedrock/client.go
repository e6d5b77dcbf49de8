// Package bedrock invokes Anthropic models through AWS Bedrock. It is the
// only component that talks to the network for reviews; everything else
// consumes the raw text it returns.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/loggy"
)

// Client represents an AWS Bedrock model client.
// A client built without credentials is still a valid value; every
// invocation returns ErrNotConfigured without touching the network.
type Client struct {
	runtime     *bedrockruntime.Client
	sts         *sts.Client
	modelID     string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	maxRetries  int
	limiter     *rate.Limiter
	logger      *loggy.Logger

	// retained for the diagnose preflight's format checks
	accessKeyID  string
	secretKey    string
	sessionToken string
	region       string
}

// NewClient creates a new Bedrock client from config. Missing credentials
// are not an error here; they surface as ErrNotConfigured on use.
func NewClient(ctx context.Context, awsCfg config.AWSConfig, cfg config.BedrockConfig, logger *loggy.Logger) (*Client, error) {
	c := &Client{
		modelID:      cfg.ModelID,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		limiter:      newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		logger:       logger,
		accessKeyID:  awsCfg.AccessKeyID,
		secretKey:    awsCfg.SecretAccessKey,
		sessionToken: awsCfg.SessionToken,
		region:       awsCfg.Region,
	}

	if !awsCfg.HasCredentials() {
		logger.Warn("Bedrock client not configured", "reason", "missing AWS credentials")
		return c, nil
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsCfg.AccessKeyID, awsCfg.SecretAccessKey, awsCfg.SessionToken)),
		// Retries are handled here with backoff, not by the SDK.
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	c.runtime = bedrockruntime.NewFromConfig(sdkCfg, func(o *bedrockruntime.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	c.sts = sts.NewFromConfig(sdkCfg, func(o *sts.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("initialized Bedrock client",
		"model", cfg.ModelID,
		"region", awsCfg.Region,
		"rpm", cfg.RequestsPerMinute,
		"burst", cfg.BurstLimit)

	return c, nil
}

// Configured reports whether credentials were available at construction
func (c *Client) Configured() bool {
	return c.runtime != nil
}

// ModelID returns the model identifier this client invokes
func (c *Client) ModelID() string {
	return c.modelID
}

// Region returns the AWS region this client targets
func (c *Client) Region() string {
	return c.region
}

// Invoke sends the prompt as a single user message and returns the first
// text block of the model's reply.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	return c.invoke(ctx, prompt, c.maxTokens)
}

func (c *Client) invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(messageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      c.temperature,
		Messages:         []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request body: %w", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	}

	c.logger.Debug("sending Bedrock request",
		"model", c.modelID,
		"max_tokens", maxTokens,
		"prompt_length", len(prompt))

	var out *bedrockruntime.InvokeModelOutput
	var lastErr error
	operation := func() error {
		result, err := c.runtime.InvokeModel(ctx, input)
		if err != nil {
			lastErr = err
			return err
		}
		out = result
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		capErr := classifyError(lastErr)
		c.logger.Error("Bedrock invocation failed", "code", capErr.Code, "error", capErr.Message)
		return "", capErr
	}

	var resp messageResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decoding response body: %w", err)
	}

	c.logger.Debug("Bedrock response received",
		"model", resp.Model,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", &CapabilityError{Message: "response contained no text content"}
}

// newLimiter builds a client-side request limiter from RPM and burst.
// Non-positive RPM disables limiting.
func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}
