package listing

import "fmt"

// Status is the shared listing-status vocabulary.
type Status int

const (
	Unimplemented Status = iota
	Published
	Unregistered
	Hidden
	Closed
	OutOfStock
	Warehouse
	NotYetOpen
)

var statusLabels = map[Status]string{
	Published:     "公開中",
	Unregistered:  "未登録",
	Hidden:        "非表示",
	Closed:        "受付終了",
	OutOfStock:    "在庫0",
	Warehouse:     "倉庫",
	NotYetOpen:    "未受付",
	Unimplemented: "未実装",
}

// Statuses lists every status in display order.
var Statuses = []Status{Published, Unregistered, Hidden, Closed, OutOfStock, Warehouse, NotYetOpen, Unimplemented}

// Label returns the display label used in reports.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) String() string { return s.Label() }

// Gray reports whether s is a low-severity state. Gray statuses only count
// as a disagreement when they appear next to exactly one main status.
func (s Status) Gray() bool {
	switch s {
	case Hidden, OutOfStock, Closed, Warehouse:
		return true
	}
	return false
}

// MarshalText encodes a status as its label.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusLabels[s]; !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.Label()), nil
}

// UnmarshalText decodes a status label.
func (s *Status) UnmarshalText(b []byte) error {
	st, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status label %q", string(b))
	}
	*s = st
	return nil
}

// ParseStatus returns the status for a display label.
func ParseStatus(label string) (Status, bool) {
	for st, l := range statusLabels {
		if l == label {
			return st, true
		}
	}
	return Unimplemented, false
}

// CheckFlag marks whether an item's channel statuses agree.
type CheckFlag int

const (
	CheckOK CheckFlag = iota
	NeedsReview
)

func (c CheckFlag) String() string {
	if c == NeedsReview {
		return "要確認"
	}
	return "OK"
}

// MarshalText encodes the flag as its label.
func (c CheckFlag) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a flag label.
func (c *CheckFlag) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OK":
		*c = CheckOK
	case "要確認":
		*c = NeedsReview
	default:
		return fmt.Errorf("unknown check flag %q", string(b))
	}
	return nil
}

// Check derives the discrepancy flag from the statuses of all active channels.
func Check(statuses []Status) CheckFlag {
	main := make(map[Status]struct{})
	gray := make(map[Status]struct{})
	for _, s := range statuses {
		if s.Gray() {
			gray[s] = struct{}{}
		} else {
			main[s] = struct{}{}
		}
	}
	if len(main) >= 2 || (len(main) == 1 && len(gray) >= 1) {
		return NeedsReview
	}
	return CheckOK
}
