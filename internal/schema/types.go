// Package schema defines the typed model for a prompt pack: pack metadata,
// prompts, variables, tools, guardrail validators, fragments, and multimodal
// configuration. All entities are immutable value objects once parsed.
package schema

// VariableValidation holds constraint rules applied to a variable value
// after type coercion.
type VariableValidation struct {
	Pattern   *string  `json:"pattern,omitempty"`
	MinLength *int     `json:"min_length,omitempty" validate:"omitempty,gte=0"`
	MaxLength *int     `json:"max_length,omitempty" validate:"omitempty,gte=1"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
}

// Variable declares a template variable with type information and
// optional validation rules. A nil Default means no default is set; the
// pack format cannot distinguish an explicit null default from an absent
// one, and neither does this model.
type Variable struct {
	Name        string              `json:"name" validate:"required,identifier"`
	Type        string              `json:"type" validate:"required,oneof=string number boolean object array"`
	Required    bool                `json:"required"`
	Default     any                 `json:"default,omitempty"`
	Description *string             `json:"description,omitempty"`
	Example     any                 `json:"example,omitempty"`
	Validation  *VariableValidation `json:"validation,omitempty"`
}

// ToolParameters is a JSON-Schema-shaped parameter spec for a tool. The
// type is fixed to "object". Unknown fields are preserved in Extra.
type ToolParameters struct {
	Type       string         `json:"type" validate:"omitempty,eq=object"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`

	// Extra holds unrecognized fields (open schema section).
	Extra map[string]any `json:"-"`
}

// Tool is a function-call definition following the common
// name/description/parameters shape.
type Tool struct {
	Name        string          `json:"name" validate:"required,identifier"`
	Description string          `json:"description" validate:"required,min=1"`
	Parameters  *ToolParameters `json:"parameters,omitempty"`
}

// ToolPolicy governs which declared tools a prompt may expose and how
// aggressively they may be called.
type ToolPolicy struct {
	ToolChoice          string   `json:"tool_choice,omitempty" validate:"omitempty,oneof=auto required none"`
	MaxRounds           int      `json:"max_rounds,omitempty" validate:"omitempty,gte=1"`
	MaxToolCallsPerTurn int      `json:"max_tool_calls_per_turn,omitempty" validate:"omitempty,gte=1"`
	Blocklist           []string `json:"blocklist,omitempty"`
}

// MiddlewareConfig configures a single pipeline middleware component.
type MiddlewareConfig struct {
	Type   string         `json:"type" validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// PipelineConfig lists ordered processing stages and middleware.
type PipelineConfig struct {
	Stages     []string           `json:"stages" validate:"required"`
	Middleware []MiddlewareConfig `json:"middleware,omitempty"`
}

// Parameters holds LLM sampling parameters. Every field is independently
// optional so model overrides can replace them one at a time.
type Parameters struct {
	Temperature      *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens        *int     `json:"max_tokens,omitempty" validate:"omitempty,gte=1"`
	TopP             *float64 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	TopK             *int     `json:"top_k,omitempty" validate:"omitempty,gte=1"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
}

// Validator kinds with defined runtime semantics. The remaining kinds
// parse but run as no-ops.
const (
	ValidatorBannedWords = "banned_words"
	ValidatorMaxLength   = "max_length"
	ValidatorMinLength   = "min_length"
	ValidatorRegexMatch  = "regex_match"
)

// Validator is a guardrail applied to generated output. Enabled carries
// no default: a pack that omits it is structurally invalid, so a
// guardrail can never be skipped by accident.
type Validator struct {
	Type            string         `json:"type" validate:"required,oneof=banned_words max_length min_length regex_match json_schema sentiment toxicity pii_detection custom"`
	Enabled         *bool          `json:"enabled" validate:"required"`
	FailOnViolation bool           `json:"fail_on_violation,omitempty"`
	Params          map[string]any `json:"params,omitempty"`
}

// TestedModel records observed behavior of the prompt on one model.
type TestedModel struct {
	Provider    string   `json:"provider" validate:"required"`
	Model       string   `json:"model" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	SuccessRate *float64 `json:"success_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	AvgTokens   *float64 `json:"avg_tokens,omitempty" validate:"omitempty,gte=0"`
	AvgCost     *float64 `json:"avg_cost,omitempty" validate:"omitempty,gte=0"`
	AvgLatency  *float64 `json:"avg_latency_ms,omitempty" validate:"omitempty,gte=0"`
	Notes       *string  `json:"notes,omitempty"`
}

// ModelOverride replaces or augments a prompt's template and parameters
// for a specific target model. Each field overrides independently; a full
// SystemTemplate replacement wins over prefix/suffix.
type ModelOverride struct {
	SystemTemplatePrefix *string     `json:"system_template_prefix,omitempty"`
	SystemTemplateSuffix *string     `json:"system_template_suffix,omitempty"`
	SystemTemplate       *string     `json:"system_template,omitempty"`
	Parameters           *Parameters `json:"parameters,omitempty"`
}

// ImageConfig constrains image content.
type ImageConfig struct {
	MaxSizeMB       *int     `json:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	AllowedFormats  []string `json:"allowed_formats,omitempty" validate:"omitempty,dive,oneof=jpeg jpg png webp gif bmp"`
	DefaultDetail   string   `json:"default_detail,omitempty" validate:"omitempty,oneof=low high auto"`
	RequireCaption  bool     `json:"require_caption,omitempty"`
	MaxImagesPerMsg *int     `json:"max_images_per_msg,omitempty" validate:"omitempty,gte=1"`
}

// AudioConfig constrains audio content.
type AudioConfig struct {
	MaxSizeMB       *int     `json:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	AllowedFormats  []string `json:"allowed_formats,omitempty" validate:"omitempty,dive,oneof=mp3 wav opus flac m4a aac"`
	MaxDurationSec  *int     `json:"max_duration_sec,omitempty" validate:"omitempty,gte=1"`
	RequireMetadata bool     `json:"require_metadata,omitempty"`
}

// VideoConfig constrains video content.
type VideoConfig struct {
	MaxSizeMB       *int     `json:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	AllowedFormats  []string `json:"allowed_formats,omitempty" validate:"omitempty,dive,oneof=mp4 webm mov avi mkv"`
	MaxDurationSec  *int     `json:"max_duration_sec,omitempty" validate:"omitempty,gte=1"`
	RequireMetadata bool     `json:"require_metadata,omitempty"`
}

// DocumentConfig constrains document content.
type DocumentConfig struct {
	MaxSizeMB       *int     `json:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	AllowedFormats  []string `json:"allowed_formats,omitempty"`
	MaxPages        *int     `json:"max_pages,omitempty" validate:"omitempty,gte=1"`
	RequireMetadata bool     `json:"require_metadata,omitempty"`
	ExtractionMode  string   `json:"extraction_mode,omitempty" validate:"omitempty,oneof=text structured raw"`
}

// GenericMediaTypeConfig configures a custom media type. Unknown fields
// are preserved in Extra.
type GenericMediaTypeConfig struct {
	MaxSizeMB        *int           `json:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	AllowedFormats   []string       `json:"allowed_formats,omitempty"`
	RequireMetadata  bool           `json:"require_metadata,omitempty"`
	ValidationParams map[string]any `json:"validation_params,omitempty"`

	Extra map[string]any `json:"-"`
}

// MediaReference points at a media payload by URL, inline base64 data, or
// local file path.
type MediaReference struct {
	FilePath *string `json:"file_path,omitempty"`
	URL      *string `json:"url,omitempty"`
	Base64   *string `json:"base64,omitempty"`
	MIMEType string  `json:"mime_type" validate:"required"`
	Detail   *string `json:"detail,omitempty" validate:"omitempty,oneof=low high auto"`
	Caption  *string `json:"caption,omitempty"`
}

// ContentPart is a single part within a multimodal message.
type ContentPart struct {
	Type  string          `json:"type" validate:"required,mediatag"`
	Text  *string         `json:"text,omitempty"`
	Media *MediaReference `json:"media,omitempty"`
}

// MultimodalExample is an example multimodal message carried by a pack.
type MultimodalExample struct {
	Name        string        `json:"name" validate:"required"`
	Description *string       `json:"description,omitempty"`
	Role        string        `json:"role" validate:"required,oneof=user assistant system"`
	Parts       []ContentPart `json:"parts" validate:"required,min=1,dive"`
}

// MediaConfig enables and configures multimodal content for a prompt.
// Unknown fields are preserved in Extra.
type MediaConfig struct {
	Enabled        *bool               `json:"enabled" validate:"required"`
	SupportedTypes []string            `json:"supported_types,omitempty"`
	Image          *ImageConfig        `json:"image,omitempty"`
	Audio          *AudioConfig        `json:"audio,omitempty"`
	Video          *VideoConfig        `json:"video,omitempty"`
	Document       *DocumentConfig     `json:"document,omitempty"`
	Examples       []MultimodalExample `json:"examples,omitempty" validate:"omitempty,dive"`

	Extra map[string]any `json:"-"`
}

// Prompt is a single prompt configuration within a pack. Tools holds
// names resolved lazily against the owning pack's tool table.
type Prompt struct {
	ID             string                   `json:"id" validate:"required,promptid"`
	Name           string                   `json:"name" validate:"required,min=1"`
	Description    *string                  `json:"description,omitempty"`
	Version        string                   `json:"version" validate:"required,semver_loose"`
	SystemTemplate string                   `json:"system_template" validate:"required,min=1"`
	Variables      []Variable               `json:"variables,omitempty" validate:"omitempty,dive"`
	Tools          []string                 `json:"tools,omitempty"`
	ToolPolicy     *ToolPolicy              `json:"tool_policy,omitempty"`
	Pipeline       *PipelineConfig          `json:"pipeline,omitempty"`
	Parameters     *Parameters              `json:"parameters,omitempty"`
	Validators     []Validator              `json:"validators,omitempty" validate:"omitempty,dive"`
	TestedModels   []TestedModel            `json:"tested_models,omitempty" validate:"omitempty,dive"`
	ModelOverrides map[string]ModelOverride `json:"model_overrides,omitempty" validate:"omitempty,dive"`
	Media          *MediaConfig             `json:"media,omitempty"`
}

// TemplateEngine describes the template syntax a pack was authored for.
type TemplateEngine struct {
	Version  string   `json:"version" validate:"required"`
	Syntax   string   `json:"syntax" validate:"required"`
	Features []string `json:"features,omitempty" validate:"omitempty,dive,oneof=basic_substitution fragments conditionals loops filters"`
}

// Compilation records provenance for a compiled pack.
type Compilation struct {
	CompiledWith  string  `json:"compiled_with" validate:"required"`
	CreatedAt     string  `json:"created_at" validate:"required"`
	SchemaVersion string  `json:"schema" validate:"required"`
	Source        *string `json:"source,omitempty"`
}

// CostEstimate estimates usage cost for a pack.
type CostEstimate struct {
	MinCostUSD *float64 `json:"min_cost_usd,omitempty" validate:"omitempty,gte=0"`
	MaxCostUSD *float64 `json:"max_cost_usd,omitempty" validate:"omitempty,gte=0"`
	AvgCostUSD *float64 `json:"avg_cost_usd,omitempty" validate:"omitempty,gte=0"`
}

// PackMetadata holds pack-level metadata. Unknown fields are preserved in
// Extra (forward-compatibility escape hatch).
type PackMetadata struct {
	Domain       *string       `json:"domain,omitempty"`
	Language     *string       `json:"language,omitempty" validate:"omitempty,langcode"`
	Tags         []string      `json:"tags,omitempty"`
	CostEstimate *CostEstimate `json:"cost_estimate,omitempty"`

	Extra map[string]any `json:"-"`
}

// Pack is the top-level container: a versioned, self-contained bundle of
// prompts, fragments, tools, and guardrails. Prompts is never empty on a
// validated pack.
type Pack struct {
	SchemaURL      *string           `json:"$schema,omitempty"`
	ID             string            `json:"id" validate:"required,packid,min=1,max=100"`
	Name           string            `json:"name" validate:"required,min=1,max=200"`
	Version        string            `json:"version" validate:"required,semver_loose"`
	Description    *string           `json:"description,omitempty" validate:"omitempty,max=5000"`
	TemplateEngine TemplateEngine    `json:"template_engine"`
	Prompts        map[string]Prompt `json:"prompts" validate:"required,min=1,dive"`
	Fragments      map[string]string `json:"fragments,omitempty"`
	Tools          map[string]Tool   `json:"tools,omitempty" validate:"omitempty,dive"`
	Metadata       *PackMetadata     `json:"metadata,omitempty"`
	Compilation    *Compilation      `json:"compilation,omitempty"`
}
