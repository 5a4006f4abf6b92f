package moderation

import "strings"

// Layer names the moderation stage that produced a block.
type Layer string

const (
	LayerNone     Layer = ""
	LayerExternal Layer = "external"
	LayerKeyword  Layer = "keyword"
)

// CannedResponse replaces the model answer whenever a message is blocked.
const CannedResponse = "Hmm, let's keep our chat kind and safe! Is there something else you'd like to learn about today?"

// Verdict is the outcome of moderating one message.
type Verdict struct {
	Blocked    bool
	Layer      Layer
	Categories []string
	Term       string
}

// Reason renders the triggering categories or term for logs.
func (v Verdict) Reason() string {
	switch v.Layer {
	case LayerExternal:
		return strings.Join(v.Categories, ",")
	case LayerKeyword:
		return v.Term
	default:
		return ""
	}
}

func (v Verdict) layerLabel() string {
	if v.Layer == LayerNone {
		return "none"
	}
	return string(v.Layer)
}
