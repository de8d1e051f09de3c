package chat

import "github.com/praxkit/praxis-chat/guardrail"

// ChunkMatch is one retrieved knowledge snippet. Distance is the raw vector
// distance from the query embedding; matches arrive nearest first.
type ChunkMatch struct {
	ChunkID  string
	Content  string
	Source   string
	Distance float64
}

// Reply is the single terminal payload of the pipeline. Category records
// which path produced the text: a guardrail short-circuit or a normal
// generated answer (CategoryNone).
type Reply struct {
	Text     string
	Category guardrail.Category
}
