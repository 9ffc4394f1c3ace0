package model

// MatchReason labels which cascade rule produced a candidate pair.
type MatchReason string

const (
	ReasonExactEmail     MatchReason = "Exact email match"
	ReasonExactPhone     MatchReason = "Exact phone match"
	ReasonProfileURL     MatchReason = "Profile URL match"
	ReasonNameDomain     MatchReason = "Same first name + domain"
	ReasonSimilarCompany MatchReason = "Similar name + same company"
)

// Match holds the classifier outcome for a pair of contacts.
type Match struct {
	Score  int         `json:"score"`
	Reason MatchReason `json:"reason"`
}

// PairKey identifies an unordered pair of contact ids. Lo sorts before Hi so
// the same two records always produce the same key regardless of argument
// order.
type PairKey struct {
	Lo string
	Hi string
}

// NewPairKey builds the order-independent key for two contact ids.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Contains reports whether the key references the given contact id.
func (k PairKey) Contains(id string) bool {
	return k.Lo == id || k.Hi == id
}

// CandidatePair is a possible duplicate: two contacts plus the confidence
// score and reason assigned by the classifier. Pairs are ephemeral review
// values, not persisted entities.
type CandidatePair struct {
	A      Contact     `json:"a"`
	B      Contact     `json:"b"`
	Score  int         `json:"score"`
	Reason MatchReason `json:"reason"`
}

// Key returns the order-independent identity of the pair.
func (p CandidatePair) Key() PairKey {
	return NewPairKey(p.A.ID, p.B.ID)
}

// Other returns the pair member that is not the given id, and false when the
// id belongs to neither side.
func (p CandidatePair) Other(id string) (Contact, bool) {
	switch id {
	case p.A.ID:
		return p.B, true
	case p.B.ID:
		return p.A, true
	}
	return Contact{}, false
}
