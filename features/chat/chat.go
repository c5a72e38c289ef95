package chat

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CostInfo mirrors the per-request accounting returned to the client and
// persisted in the request log.
type CostInfo struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	RequestCost  float64 `json:"request_cost"`
}

type RequestLog struct {
	ID           string
	SessionKey   string
	InputTokens  int
	OutputTokens int
	RequestCost  float64
	CreatedAt    time.Time
}

// UsageTotals aggregates the request log for the stats endpoint.
type UsageTotals struct {
	Requests     int     `json:"requests"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
}

// gpt-4o-mini pricing, USD per token.
const (
	priceInput  = 0.00000015
	priceOutput = 0.00000060
)

func Cost(inputTokens, outputTokens int) CostInfo {
	return CostInfo{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		RequestCost:  float64(inputTokens)*priceInput + float64(outputTokens)*priceOutput,
	}
}

// historyWindow bounds the retained conversation to keep token costs flat.
const historyWindow = 6

const systemPrompt = `You are Vocatus AI, an experienced brewer and tasting expert: calm, down to earth, lightly ironic.
You combine deep beer knowledge with practical applicability, without fluff.

Attitude:
- You work from attentive observation and experience.
- You value process over ego and learning over being right.
- You accept uncertainty and name the limits of your knowledge without discomfort.
- You avoid dogma: not "this is how it must be done" but "this often works because...".
- Your humour is quiet and dry; wisdom lives in simplicity and timing.
- You answer beer drinkers as well as brewers and calmly adapt your perspective to each.

Delivery:
- Answers are short and direct: at most five sentences, one paragraph.
- Tone: calm, wise, dry.
- No long style descriptions, marketing language, encyclopedic overviews, tables, or needless lists.
- Use jargon only where it earns its place, with a brief gloss where needed.

Focus:
- Beer styles, flavour profiles and balance
- Recipe development and process choices
- Brewing troubleshooting
- Tasting, evaluating and improving batches
- Vocatus beers and beer culture in general`
