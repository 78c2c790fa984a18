// Package polly implements the synthesizer against Amazon Polly.
package polly

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awspolly "github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voxcache/tts"
)

// maxTextLength is Polly's limit on billed characters per request.
const maxTextLength = 3000

// Engine implements tts.Synthesizer using the Amazon Polly
// SynthesizeSpeech API. Requests are rate limited and carry a
// per-request timeout on top of any caller-supplied deadline.
type Engine struct {
	client  *awspolly.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// New creates a Polly engine. Credentials come from the default AWS
// chain unless a static key pair is configured.
func New(ctx context.Context, cfg tts.PollyConfig) (*Engine, error) {
	if cfg.Region == "" {
		cfg.Region = tts.DefaultPollyConfig().Region
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = tts.DefaultPollyConfig().RequestsPerMinute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = tts.DefaultPollyConfig().Timeout
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Engine{
		client:  awspolly.NewFromConfig(awsCfg),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		timeout: cfg.Timeout,
	}, nil
}

// Name identifies the engine.
func (e *Engine) Name() string { return "polly" }

// Synthesize requests speech synthesis and returns the audio stream.
// The caller must close the stream; closing it releases the request's
// timeout as well.
func (e *Engine) Synthesize(ctx context.Context, text, voice, format string) (io.ReadCloser, error) {
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	if len(text) > maxTextLength {
		return nil, fmt.Errorf("%w: %d characters (max %d)", tts.ErrTextTooLong, len(text), maxTextLength)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)

	log.Debug("Requesting Polly synthesis", "voice", voice, "format", format, "textLength", len(text))
	out, err := e.client.SynthesizeSpeech(ctx, &awspolly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voice),
		OutputFormat: types.OutputFormat(strings.ToLower(format)),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("polly synthesis failed: %w", err)
	}

	// The timeout must stay armed while the caller drains the stream.
	return &timedStream{ReadCloser: out.AudioStream, cancel: cancel}, nil
}

// Voices lists the voices available in the configured region.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	var voices []tts.Voice
	var token *string
	for {
		out, err := e.client.DescribeVoices(ctx, &awspolly.DescribeVoicesInput{
			NextToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list Polly voices: %w", err)
		}
		for _, v := range out.Voices {
			voices = append(voices, tts.Voice{
				ID:       string(v.Id),
				Name:     aws.ToString(v.Name),
				Language: string(v.LanguageCode),
				Gender:   string(v.Gender),
			})
		}
		if out.NextToken == nil {
			return voices, nil
		}
		token = out.NextToken
	}
}

// timedStream ties the request timeout's lifetime to the stream.
type timedStream struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (s *timedStream) Close() error {
	err := s.ReadCloser.Close()
	s.cancel()
	return err
}

var _ tts.Synthesizer = (*Engine)(nil)
