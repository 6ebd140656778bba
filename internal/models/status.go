package models

// Status is the drafting stage of an act. Stages only move forward.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
	StatusFinal     Status = "final"
	StatusSigned    Status = "signed"
)

var statusRank = map[Status]int{
	StatusDraft:     0,
	StatusValidated: 1,
	StatusFinal:     2,
	StatusSigned:    3,
}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank orders statuses; unknown values rank below draft.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// CanAdvanceTo reports whether moving from s to next keeps the progression forward.
// Staying on the same status is allowed.
func (s Status) CanAdvanceTo(next Status) bool {
	return next.IsValid() && next.Rank() >= s.Rank()
}
