package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client is a lightweight facade over the Gemini REST surface so that the
// dispatch layer can focus on translating render jobs into API calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs a Gemini client with sane defaults. Callers may pass a
// nil HTTP client; one with a sensible timeout is created.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		apiKey:     key,
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// TokenUsage is the per-call usage metadata reported by the backend.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Blob is an inline binary payload with its MIME type.
type Blob struct {
	Data []byte
	MIME string
}

// ImageRequest carries everything one image generation call needs. Part
// ordering on the wire is fixed: product image, optional reference image,
// prompt text.
type ImageRequest struct {
	Model       string
	Prompt      string
	Image       Blob
	Reference   *Blob
	AspectRatio string
	ImageSize   string // "1K" or "4K"; empty leaves the backend default
	Seed        *int32
	Temperature float64
	RequestID   string
}

// ImageResult is the decoded outcome of a successful image call.
type ImageResult struct {
	Data  []byte
	MIME  string
	Usage TokenUsage
}

// VideoRequest carries everything one video generation call needs.
type VideoRequest struct {
	Model           string
	Prompt          string
	Image           Blob
	AspectRatio     string
	Resolution      string
	DurationSeconds int
	RequestID       string
}

// VideoResult is the downloaded outcome of a completed video operation.
type VideoResult struct {
	Data  []byte
	MIME  string
	URI   string
	Usage TokenUsage
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"topP,omitempty"`
	TopK        int                `json:"topK,omitempty"`
	Seed        *int32             `json:"seed,omitempty"`
	ImageConfig *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type geminiGenerateContentResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

const (
	defaultTopP = 0.95
	defaultTopK = 40
)

// GenerateImage issues one generateContent call and decodes the first inline
// image from the response. A response that carries text instead of image
// bytes fails with a *TextResponseError.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	parts := []geminiPart{{
		InlineData: &geminiInlineData{
			MimeType: orMIME(req.Image.MIME),
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		},
	}}
	if req.Reference != nil && len(req.Reference.Data) > 0 {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: orMIME(req.Reference.MIME),
				Data:     base64.StdEncoding.EncodeToString(req.Reference.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: req.Prompt})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature: req.Temperature,
			TopP:        defaultTopP,
			TopK:        defaultTopK,
			Seed:        req.Seed,
			ImageConfig: &geminiImageConfig{
				AspectRatio: req.AspectRatio,
				ImageSize:   req.ImageSize,
			},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	usage := TokenUsage{}
	if response.UsageMetadata != nil {
		usage.InputTokens = response.UsageMetadata.PromptTokenCount
		usage.OutputTokens = response.UsageMetadata.CandidatesTokenCount
	}

	var refusal string
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("genai: decode inline data: %w", err)
				}
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				c.logger.Debug().
					Str("request_id", req.RequestID).
					Str("model", req.Model).
					Int("bytes", len(data)).
					Msg("genai: image generated")
				return &ImageResult{Data: data, MIME: mime, Usage: usage}, nil
			}
			if part.Text != "" && refusal == "" {
				refusal = part.Text
			}
		}
	}

	if refusal != "" {
		return nil, &TextResponseError{Text: refusal}
	}
	return nil, &TextResponseError{Text: "backend returned no image payload"}
}

type veoImagePayload struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoInstance struct {
	Prompt string           `json:"prompt"`
	Image  *veoImagePayload `json:"image,omitempty"`
}

type veoParameters struct {
	NumberOfVideos  int    `json:"numberOfVideos,omitempty"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

type veoSubmitRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoOperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type veoOperationResponse struct {
	GenerateVideoResponse struct {
		GeneratedSamples []struct {
			Video struct {
				URI string `json:"uri"`
			} `json:"video"`
		} `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
}

type veoOperation struct {
	Name     string                `json:"name"`
	Done     bool                  `json:"done"`
	Error    *veoOperationError    `json:"error,omitempty"`
	Response *veoOperationResponse `json:"response,omitempty"`
}

// SubmitVideo starts a long-running video generation and returns the
// operation name to poll.
func (c *Client) SubmitVideo(ctx context.Context, req VideoRequest) (string, error) {
	instance := veoInstance{Prompt: req.Prompt}
	if len(req.Image.Data) > 0 {
		instance.Image = &veoImagePayload{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Image.Data),
			MimeType:           orMIME(req.Image.MIME),
		}
	}
	payload := veoSubmitRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			NumberOfVideos:  1,
			AspectRatio:     req.AspectRatio,
			Resolution:      req.Resolution,
			DurationSeconds: req.DurationSeconds,
		},
	}

	var op veoOperation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(req.Model))
	if err := c.invoke(ctx, path, payload, &op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", fmt.Errorf("genai: video submit returned no operation name")
	}
	return op.Name, nil
}

// PollVideo fetches the state of a long-running video operation. It returns
// (nil, false, nil) while the operation is still running, and the downloaded
// asset once done.
func (c *Client) PollVideo(ctx context.Context, model, operationName string) (*VideoResult, bool, error) {
	payload := map[string]string{"operationName": operationName}
	var op veoOperation
	path := fmt.Sprintf("/models/%s:fetchPredictOperation", url.PathEscape(model))
	if err := c.invoke(ctx, path, payload, &op); err != nil {
		return nil, false, err
	}
	if !op.Done {
		return nil, false, nil
	}
	if op.Error != nil {
		return nil, true, &APIError{StatusCode: op.Error.Code, Message: op.Error.Message}
	}
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
		return nil, true, fmt.Errorf("genai: video operation finished without a sample")
	}
	uri := op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
	if uri == "" {
		return nil, true, fmt.Errorf("genai: video operation returned no asset uri")
	}

	data, mime, err := c.download(ctx, uri)
	if err != nil {
		return nil, true, err
	}
	if mime == "" {
		mime = "video/mp4"
	}
	return &VideoResult{Data: data, MIME: mime, URI: uri}, true, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("genai: marshal request: %w", err)
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("genai: create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		var envelope geminiErrorResponse
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
			apiErr.Status = envelope.Error.Status
			apiErr.Message = envelope.Error.Message
		} else if len(raw) > 0 {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decode response: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("genai: create download request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("genai: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("genai: read download: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func orMIME(mime string) string {
	if strings.TrimSpace(mime) == "" {
		return "image/jpeg"
	}
	return mime
}
