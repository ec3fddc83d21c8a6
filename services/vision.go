package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model used for clothing photo classification.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	FlashLite25
	Flash20
	Pro25
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

// ClothingAttributes is the structured payload the vision model returns for a
// single item photo. Fields line up with the wardrobe taxonomy the scoring
// engine consumes.
type ClothingAttributes struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Color       string   `json:"color"`
	Seasons     []string `json:"seasons"`
	Occasions   []string `json:"occasions"`
	Tags        []string `json:"tags"`
}

type VisionResult struct {
	Attributes       ClothingAttributes `json:"attributes"`
	LLMModel         string             `json:"llm_model"`
	InputTokenCount  int32              `json:"input_token_count"`
	OutputTokenCount int32              `json:"output_token_count"`
	TotalTokenCount  int32              `json:"total_token_count"`
}

type VisionProvider interface {
	ClassifyClothing(ctx context.Context, filePath string, modelName LLMModelName) (*VisionResult, error)
}

// GoogleVisionClassifier classifies item photos with Gemini.
type GoogleVisionClassifier struct{}

const classifyPrompt = `You are a fashion catalog assistant. Look at the photo of a single clothing item and answer with JSON only, no markdown fences, following this schema:
{"name": string, "category": string, "subcategory": string, "color": string, "seasons": [string], "occasions": [string], "tags": [string]}
category must be one of: tops, bottoms, dresses, outerwear, shoes, accessories, underwear, activewear, sleepwear, swimwear.
color must be a lowercase common color name (e.g. navy, black, burgundy, olive) of the dominant color.
seasons is a subset of: spring, summer, fall, winter. occasions is a subset of: casual, work, formal, party, sport, travel, date, special.
tags are up to 5 short lowercase style descriptors (e.g. minimal, sporty, tailored).`

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		genFile, err = client.Files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{})
		if err == nil {
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %s", maxUploadTimes, filePath)
}

var jsonFenceRegex = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// stripJSONFences tolerates models that wrap the payload in markdown fences
// despite the prompt.
func stripJSONFences(text string) string {
	if m := jsonFenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func (GoogleVisionClassifier) ClassifyClothing(ctx context.Context, filePath string, modelName LLMModelName) (*VisionResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	genFile, err := tryUploadGoogleStorage(ctx, client, filePath)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		{FileData: &genai.FileData{FileURI: genFile.URI, MIMEType: genFile.MIMEType}},
		{Text: classifyPrompt},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, err
	}

	for _, c := range result.Candidates {
		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
	}

	var attrs ClothingAttributes
	raw := stripJSONFences(result.Text())
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("vision response was not valid attribute JSON: %v", err)
	}

	out := &VisionResult{
		Attributes: attrs,
		LLMModel:   modelName.String(),
	}
	if result.UsageMetadata != nil {
		out.InputTokenCount = result.UsageMetadata.PromptTokenCount
		out.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		out.TotalTokenCount = result.UsageMetadata.TotalTokenCount
	}
	return out, nil
}
