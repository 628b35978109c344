package domain

import "fmt"

const (
	MaxReplaysPerPage = 127
	MaxPages          = 100
)

// QueryParameters is an immutable replay catalog query. The With* methods return
// modified copies.
type QueryParameters struct {
	page           int
	replaysPerPage int
	minFloor       Floor
	maxFloor       Floor
	character      *Character
}

func NewQueryParameters() QueryParameters {
	return QueryParameters{
		page:           0,
		replaysPerPage: MaxReplaysPerPage,
		minFloor:       MinFloor,
		maxFloor:       MaxFloor,
	}
}

func (q QueryParameters) WithPage(page int) QueryParameters {
	q.page = page
	return q
}

func (q QueryParameters) WithReplaysPerPage(n int) QueryParameters {
	q.replaysPerPage = n
	return q
}

func (q QueryParameters) WithFloorRange(lo, hi Floor) QueryParameters {
	q.minFloor = lo
	q.maxFloor = hi
	return q
}

func (q QueryParameters) WithCharacter(c Character) QueryParameters {
	q.character = &c
	return q
}

func (q QueryParameters) WithoutCharacter() QueryParameters {
	q.character = nil
	return q
}

func (q QueryParameters) Page() int           { return q.page }
func (q QueryParameters) ReplaysPerPage() int { return q.replaysPerPage }
func (q QueryParameters) MinFloor() Floor     { return q.minFloor }
func (q QueryParameters) MaxFloor() Floor     { return q.maxFloor }

func (q QueryParameters) Character() (Character, bool) {
	if q.character == nil {
		return 0, false
	}
	return *q.character, true
}

func (q QueryParameters) Validate() error {
	if q.page < 0 || q.page >= MaxPages {
		return fmt.Errorf("%w: page index %d must be in [0, %d)", ErrInvalidParameters, q.page, MaxPages)
	}
	if q.replaysPerPage < 1 || q.replaysPerPage > MaxReplaysPerPage {
		return fmt.Errorf("%w: replays per page %d must be in [1, %d]", ErrInvalidParameters, q.replaysPerPage, MaxReplaysPerPage)
	}
	if !q.minFloor.Valid() || !q.maxFloor.Valid() {
		return fmt.Errorf("%w: unknown floor bound", ErrInvalidParameters)
	}
	if q.minFloor > q.maxFloor {
		return fmt.Errorf("%w: min floor %s is above max floor %s", ErrInvalidParameters, q.minFloor, q.maxFloor)
	}
	if q.character != nil && !q.character.Valid() {
		return fmt.Errorf("%w: unknown character filter", ErrInvalidParameters)
	}
	return nil
}
