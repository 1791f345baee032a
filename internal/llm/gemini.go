package llm

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash-lite": "gemini-2.0-flash-lite",
	"gemini-flash":      "gemini-2.0-flash",
	"gemini-pro":        "gemini-2.5-pro",
}

// DefaultGeminiSafety lets students' descriptions of teasing or exclusion
// through while still blocking clearly harmful output.
const DefaultGeminiSafety = string(genai.HarmBlockThresholdBlockOnlyHigh)

// GeminiSafetyLevels are the accepted GeminiConfig.SafetyThreshold values.
var GeminiSafetyLevels = []string{
	string(genai.HarmBlockThresholdOff),
	string(genai.HarmBlockThresholdBlockNone),
	string(genai.HarmBlockThresholdBlockOnlyHigh),
	string(genai.HarmBlockThresholdBlockMediumAndAbove),
	string(genai.HarmBlockThresholdBlockLowAndAbove),
}

// geminiHarms are the categories the safety threshold is applied to.
var geminiHarms = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategoryDangerousContent,
	genai.HarmCategorySexuallyExplicit,
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// GeminiProvider writes narratives with Gemini models.
type GeminiProvider struct {
	models *genai.Models
	model  string
	safety []*genai.SafetySetting
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	return newGeminiProvider(ctx, cfg, genai.HTTPOptions{})
}

func newGeminiProvider(ctx context.Context, cfg GeminiConfig, httpOpts genai.HTTPOptions) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	threshold := genai.HarmBlockThreshold(cmp.Or(cfg.SafetyThreshold, DefaultGeminiSafety))
	safety := make([]*genai.SafetySetting, len(geminiHarms))
	for i, harm := range geminiHarms {
		safety[i] = &genai.SafetySetting{Category: harm, Threshold: threshold}
	}

	return &GeminiProvider{
		models: client.Models,
		model:  resolveModel(cfg.Model, geminiModels),
		safety: safety,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := turns(req.Messages, func(fromModel bool, text string) *genai.Content {
		role := genai.Role(genai.RoleUser)
		if fromModel {
			role = genai.RoleModel
		}
		return genai.NewContentFromText(text, role)
	})

	res, err := p.models.GenerateContent(ctx, p.model, contents, p.config(req))
	if err != nil {
		return nil, geminiError(err)
	}

	r := reply{model: cmp.Or(res.ModelVersion, p.model), stop: stopEnd}
	if reason := geminiBlockReason(res); reason != "" {
		r.stop, r.blocked = stopBlocked, reason
	} else {
		r.text = res.Text()
		if len(res.Candidates) > 0 && res.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			r.stop = stopMaxTokens
		}
	}
	if u := res.UsageMetadata; u != nil {
		r.usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return finish(req, r)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func (p *GeminiProvider) config(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		SafetySettings:  p.safety,
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(req.Schema.Definition)
	}
	return cfg
}

// geminiSchema converts a JSON Schema map into Gemini's schema subset.
// Properties are emitted in the order of "required" so the summary comes
// before the lists that support it.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		s.Type = cmp.Or(geminiTypes[t], genai.TypeString)
	}
	s.Description, _ = def["description"].(string)
	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, sub := range props {
			if m, ok := sub.(map[string]any); ok {
				s.Properties[name] = geminiSchema(m)
			}
		}
		s.PropertyOrdering = s.Required
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	return s
}

// geminiBlockReason describes a safety block on the prompt or the first
// candidate, e.g. "candidate: SAFETY (HARM_CATEGORY_HARASSMENT)". It is
// empty when nothing was blocked.
func geminiBlockReason(res *genai.GenerateContentResponse) string {
	if fb := res.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return withHarms("prompt: "+string(fb.BlockReason), fb.SafetyRatings)
	}
	if len(res.Candidates) == 0 {
		return ""
	}
	c := res.Candidates[0]
	switch c.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return withHarms("candidate: "+string(c.FinishReason), c.SafetyRatings)
	}
	return ""
}

func withHarms(reason string, ratings []*genai.SafetyRating) string {
	var harms []string
	for _, r := range ratings {
		if r != nil && r.Blocked {
			harms = append(harms, string(r.Category))
		}
	}
	if len(harms) == 0 {
		return reason
	}
	return reason + " (" + strings.Join(harms, ", ") + ")"
}

// geminiError classifies a failed call. The SDK returns APIError by value.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.Code, 0, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
