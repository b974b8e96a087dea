package cohere

// GenerateModel names a generation model. Custom models can be used by
// converting their full ID: GenerateModel("my-finetune-id").
type GenerateModel string

const (
	// CommandRPlus is the default model: 128k context, 4k output tokens,
	// suited to RAG workflows and multi-step tool use.
	CommandRPlus GenerateModel = "command-r-plus"
	// CommandR is an instruction-following model with 128k context.
	CommandR GenerateModel = "command-r"
	// Command has 4k context and 4k output tokens.
	Command GenerateModel = "command"
	// CommandNightly is the experimental nightly build of command.
	CommandNightly GenerateModel = "command-nightly"
	// CommandLight is a smaller, faster version of command.
	CommandLight GenerateModel = "command-light"
	// CommandLightNightly is the nightly build of command-light.
	CommandLightNightly GenerateModel = "command-light-nightly"
)

// EmbedModel names an embedding model.
type EmbedModel string

const (
	// EmbedEnglishV3 produces 1024-dimension English embeddings.
	EmbedEnglishV3 EmbedModel = "embed-english-v3.0"
	// EmbedEnglishLightV3 produces 384-dimension English embeddings.
	EmbedEnglishLightV3 EmbedModel = "embed-english-light-v3.0"
	// EmbedMultilingualV3 produces 1024-dimension multilingual embeddings.
	EmbedMultilingualV3 EmbedModel = "embed-multilingual-v3.0"
	// EmbedMultilingualLightV3 produces 384-dimension multilingual embeddings.
	EmbedMultilingualLightV3 EmbedModel = "embed-multilingual-light-v3.0"
	// EmbedEnglishV2 produces 4096-dimension English embeddings.
	EmbedEnglishV2 EmbedModel = "embed-english-v2.0"
	// EmbedEnglishLightV2 produces 1024-dimension English embeddings.
	EmbedEnglishLightV2 EmbedModel = "embed-english-light-v2.0"
	// EmbedMultilingualV2 produces 768-dimension embeddings compared by dot product.
	EmbedMultilingualV2 EmbedModel = "embed-multilingual-v2.0"
)

// RerankModel names a rerank model.
type RerankModel string

const (
	RerankEnglishV3      RerankModel = "rerank-english-v3.0"
	RerankMultilingualV3 RerankModel = "rerank-multilingual-v3.0"
	RerankEnglishV2      RerankModel = "rerank-english-v2.0"
	RerankMultilingualV2 RerankModel = "rerank-multilingual-v2.0"

	// DefaultRerankModel is sent when RerankRequest.Model is empty.
	DefaultRerankModel = RerankEnglishV2
)

// Truncate controls how inputs longer than the model context are handled.
type Truncate string

const (
	TruncateNone  Truncate = "NONE"
	TruncateStart Truncate = "START"
	TruncateEnd   Truncate = "END"
)

// PromptTruncation controls how a chat prompt is fitted to the context.
// With PromptTruncationAuto parts of the history and documents are dropped.
type PromptTruncation string

const (
	PromptTruncationAuto PromptTruncation = "AUTO"
	PromptTruncationOff  PromptTruncation = "OFF"
)

// CitationQuality trades citation accuracy for latency.
type CitationQuality string

const (
	CitationQualityAccurate CitationQuality = "accurate"
	CitationQualityFast     CitationQuality = "fast"
)

// ReturnLikelihoods selects which token likelihoods generate returns.
type ReturnLikelihoods string

const (
	ReturnLikelihoodsGeneration ReturnLikelihoods = "GENERATION"
	ReturnLikelihoodsAll        ReturnLikelihoods = "ALL"
	ReturnLikelihoodsNone       ReturnLikelihoods = "NONE"
)
