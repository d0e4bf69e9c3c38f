package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const transcribePrompt = `Transcribe every piece of visible text in this photo exactly as shown,
one fragment per line, preserving digits, decimal points and symbols.
Do not interpret, summarize or reorder anything. Output only the text.`

// Gemini is a cloud OCR backend using Google Gemini vision. Gemini does not
// report per-fragment scores, so every line carries confidence 0 (unscored).
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed OCR adapter.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(modelName)}, nil
}

// Recognize sends the preprocessed JPEG to Gemini with a transcription prompt.
func (g *Gemini) Recognize(ctx context.Context, jpegData []byte) (OcrResult, error) {
	if len(jpegData) == 0 {
		return OcrResult{}, ErrInvalidInput
	}
	parts := []genai.Part{
		genai.ImageData("jpeg", jpegData),
		genai.Text(transcribePrompt),
	}
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return OcrResult{}, mapGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return OcrResult{}, fmt.Errorf("%w: empty gemini response", ErrUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	res := OcrResult{Text: text}
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			res.Lines = append(res.Lines, OcrLine{Text: s})
		}
	}
	return res, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error { return g.client.Close() }

func mapGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429:
			rl := &RateLimitedError{RetryAfter: 30 * time.Second}
			for _, h := range gerr.Header.Values("Retry-After") {
				if d, perr := time.ParseDuration(h + "s"); perr == nil {
					rl.RetryAfter = d
					break
				}
			}
			return rl
		case 400:
			return fmt.Errorf("%w: %v", ErrInvalidInput, gerr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
