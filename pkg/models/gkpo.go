package models

// GKPOEnvelope is the canonical interchange projection of a PreferenceRecord.
// It renames preferred/rejected to winner/loser and transformed_from to from,
// and owns no state of its own: the slices are shared with the source record,
// which is immutable once admitted to a dataset.
type GKPOEnvelope struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	Responses []string   `json:"responses"`
	Winner    string     `json:"winner"`
	Loser     string     `json:"loser"`
	Method    Method     `json:"method"`
	Identity  string     `json:"identity"`
	Epsilon   Epsilon    `json:"epsilon"`
	From      string     `json:"from"`
	Meta      RecordMeta `json:"meta"`

	// PromptID does not appear in the flat GKPO field set but is carried so
	// a dataset read back from disk can be re-linked to its prompt.
	PromptID string `json:"prompt_id,omitempty"`
}

// ToGKPO projects the record into its GKPO envelope. It performs no
// validation and never mutates the receiver.
func (r *PreferenceRecord) ToGKPO() GKPOEnvelope {
	return GKPOEnvelope{
		ID:        r.ID,
		Prompt:    r.Prompt,
		Responses: r.Responses,
		Winner:    r.Preferred,
		Loser:     r.Rejected,
		Method:    r.Method,
		Identity:  r.Identity,
		Epsilon:   r.Epsilon,
		From:      r.TransformedFrom,
		Meta:      r.Meta,
		PromptID:  r.PromptID,
	}
}

// ToRecord reverses the projection, reconstructing the internal record shape
// from an envelope read off the wire.
func (g GKPOEnvelope) ToRecord() *PreferenceRecord {
	return &PreferenceRecord{
		ID:              g.ID,
		PromptID:        g.PromptID,
		Prompt:          g.Prompt,
		Responses:       g.Responses,
		Preferred:       g.Winner,
		Rejected:        g.Loser,
		Method:          g.Method,
		Identity:        g.Identity,
		Epsilon:         g.Epsilon,
		TransformedFrom: g.From,
		Meta:            g.Meta,
	}
}
