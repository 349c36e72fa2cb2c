package data

import "time"

type QueryParams struct {
	Limit     int    `json:"limit"`
	NextToken []byte `json:"nextToken"`
}

// MaxLimit caps the page size of every query.
const MaxLimit = 100

func (q *QueryParams) GetLimit() *int32 {
	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	clamped := int32(limit)
	return &clamped
}

type QueryResults[T interface{}] struct {
	Items     []T    `json:"items"`
	NextToken []byte `json:"nextToken"`
}

type NextToken map[string]map[string]string

// AuthorDTO is a snapshot of a user's display fields taken at write time.
// It is never refreshed when the user later edits their profile.
type AuthorDTO struct {
	Id          string  `dynamodbav:"id"`
	DisplayName string  `dynamodbav:"displayName"`
	PhotoURL    *string `dynamodbav:"photoURL"`
}

// IndexTimeLayout is fixed width so lexical order on GS1-SK matches time order.
const IndexTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SortKey builds a GS1-SK value. Documents without a timestamp sort after
// every timestamped one.
func SortKey(t *time.Time, id string) string {
	if t == nil {
		return "~#" + id
	}
	return t.UTC().Format(IndexTimeLayout) + "#" + id
}
