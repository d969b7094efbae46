package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for the OpenAI-compatible image endpoint.
const (
	DefaultImageBaseURL = "https://api.openai.com/v1"
	DefaultImageModel   = "dall-e-3"
)

// arkHost is the Volcengine Ark endpoint, which takes endpoint ids as model
// names and rejects sizes below 2048x2048 for Seedream models.
const arkHost = "ark.cn-beijing.volces.com"

// ImageToolOption configures the image tools.
type ImageToolOption func(*imageToolConfig)

type imageToolConfig struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	fileOpts   []FileToolOption
}

// WithImageAPIKey sets the API key. Without one generate_image fails on every call.
func WithImageAPIKey(key string) ImageToolOption {
	return func(c *imageToolConfig) {
		c.apiKey = key
	}
}

// WithImageBaseURL sets the OpenAI-compatible base URL.
// Default is https://api.openai.com/v1.
func WithImageBaseURL(u string) ImageToolOption {
	return func(c *imageToolConfig) {
		c.baseURL = u
	}
}

// WithImageModel sets the image model. Default is dall-e-3.
func WithImageModel(model string) ImageToolOption {
	return func(c *imageToolConfig) {
		c.model = model
	}
}

// WithImageHTTPClient sets the client used for generation and downloads.
func WithImageHTTPClient(hc *http.Client) ImageToolOption {
	return func(c *imageToolConfig) {
		c.httpClient = hc
	}
}

// WithImageFileOptions applies file options to download destinations.
func WithImageFileOptions(opts ...FileToolOption) ImageToolOption {
	return func(c *imageToolConfig) {
		c.fileOpts = opts
	}
}

func applyImageOpts(opts []ImageToolOption) *imageToolConfig {
	cfg := &imageToolConfig{
		baseURL: DefaultImageBaseURL,
		model:   DefaultImageModel,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return cfg
}

func (c *imageToolConfig) isArk() bool {
	return strings.Contains(c.baseURL, arkHost)
}

// generateParams builds the request, applying per-provider quirks.
func (c *imageToolConfig) generateParams(args generateImageArgs) openai.ImageGenerateParams {
	size := args.Size
	if c.isArk() && size == "1024x1024" {
		size = "2048x2048"
	}

	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(c.model),
		Prompt: args.Prompt,
		Size:   openai.ImageGenerateParamsSize(size),
		N:      openai.Int(int64(args.N)),
	}
	if strings.Contains(c.model, "dall-e") && !c.isArk() {
		params.Quality = openai.ImageGenerateParamsQuality(args.Quality)
	}
	return params
}

func (c *imageToolConfig) describeFailure(err error) error {
	var apiErr *openai.Error
	if c.isArk() && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("image generation failed: %s does not serve images for model %q; "+
			"check that IMAGE_GEN_MODEL is an 'ep-...' endpoint id: %w", c.baseURL, c.model, err)
	}
	return fmt.Errorf("image generation failed: %w (base URL: %s, model: %s)", err, c.baseURL, c.model)
}

type generateImageArgs struct {
	Prompt  string `json:"prompt" desc:"Description of the image to generate" required:"true"`
	Size    string `json:"size" desc:"Image size, e.g. 1024x1024" default:"1024x1024"`
	Quality string `json:"quality" desc:"Image quality (dall-e models only)" enum:"standard,hd" default:"standard"`
	N       int    `json:"n" desc:"Number of images to generate" default:"1"`
}

// NewGenerateImageTool creates a tool that generates images through an
// OpenAI-compatible images endpoint and returns their URLs.
func NewGenerateImageTool(opts ...ImageToolOption) Registration {
	cfg := applyImageOpts(opts)

	return Func("generate_image", "Generate an image from a text prompt with an OpenAI-compatible API (DALL-E 3, Flux, Seedream)",
		func(ctx context.Context, args generateImageArgs) (string, error) {
			if cfg.apiKey == "" {
				return "", fmt.Errorf("no API key configured: set IMAGE_GEN_API_KEY or OPENAI_API_KEY")
			}
			if args.N < 1 {
				return "", fmt.Errorf("n must be at least 1, got %d", args.N)
			}

			client := openai.NewClient(
				option.WithAPIKey(cfg.apiKey),
				option.WithBaseURL(strings.TrimRight(cfg.baseURL, "/")+"/"),
				option.WithHTTPClient(cfg.httpClient),
				option.WithMaxRetries(0),
			)

			resp, err := client.Images.Generate(ctx, cfg.generateParams(args))
			if err != nil {
				return "", cfg.describeFailure(err)
			}
			if len(resp.Data) == 0 {
				return "", fmt.Errorf("image generation failed: provider returned no images (base URL: %s, model: %s)", cfg.baseURL, cfg.model)
			}

			lines := make([]string, 0, len(resp.Data))
			for _, img := range resp.Data {
				switch {
				case img.URL != "":
					lines = append(lines, "image generated: "+img.URL)
				case img.B64JSON != "":
					lines = append(lines, fmt.Sprintf("image generated: base64 data, %d bytes", len(img.B64JSON)))
				}
			}
			return strings.Join(lines, "\n"), nil
		})
}

type downloadImageArgs struct {
	URL      string `json:"url" desc:"Image URL" required:"true"`
	SavePath string `json:"save_path" desc:"Local destination; missing parent directories are created" required:"true"`
}

// NewDownloadImageTool creates a tool that saves an image URL to a local file.
func NewDownloadImageTool(opts ...ImageToolOption) Registration {
	cfg := applyImageOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("download_image", "Download an image to a local file",
		func(ctx context.Context, args downloadImageArgs) (string, error) {
			u, err := url.Parse(args.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return "", fmt.Errorf("image download failed: %q is not an http(s) URL", args.URL)
			}
			path, err := files.resolvePath(args.SavePath)
			if err != nil {
				return "", err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return "", fmt.Errorf("image download failed: %w", err)
			}
			resp, err := cfg.httpClient.Do(req)
			if err != nil {
				return "", fmt.Errorf("image download failed: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return "", fmt.Errorf("image download failed: %s", resp.Status)
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, files.maxFileSize+1))
			if err != nil {
				return "", fmt.Errorf("image download failed: %w", err)
			}
			if int64(len(data)) > files.maxFileSize {
				return "", fmt.Errorf("image download failed: image exceeds maximum size %d", files.maxFileSize)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return "", fmt.Errorf("image download failed: %w", err)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return "", fmt.Errorf("image download failed: %w", err)
			}
			return "image saved to " + path, nil
		})
}
