package model

// Candidate is a provisional value considered by a resolver before it commits
// to a field. Offset is the byte position in the normalized text where the
// value was found and is what breaks score ties (earliest wins).
type Candidate[T any] struct {
	Value  T
	Score  int
	Source string
	Offset int
}

// Best returns the highest-scoring candidate; ties go to the one found first
// in document order. ok is false when there are no candidates.
func Best[T any](candidates []Candidate[T]) (best Candidate[T], ok bool) {
	for i, c := range candidates {
		if i == 0 || c.Score > best.Score || (c.Score == best.Score && c.Offset < best.Offset) {
			best = c
			ok = true
		}
	}
	return best, ok
}
