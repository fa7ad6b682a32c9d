package moderation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// ViolationSet is a deduplicated set of labels. It serializes as a sorted list
// so that reports are byte-stable.
type ViolationSet map[ViolationLabel]struct{}

func NewViolationSet(labels ...ViolationLabel) ViolationSet {
	s := make(ViolationSet, len(labels))
	s.Add(labels...)
	return s
}

func (s ViolationSet) Add(labels ...ViolationLabel) {
	for _, l := range labels {
		s[l] = struct{}{}
	}
}

func (s ViolationSet) Has(label ViolationLabel) bool {
	_, ok := s[label]
	return ok
}

// Intersects reports whether any member of s is also in other.
func (s ViolationSet) Intersects(other ViolationSet) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for l := range small {
		if big.Has(l) {
			return true
		}
	}
	return false
}

func (s ViolationSet) Sorted() []ViolationLabel {
	out := make([]ViolationLabel, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ViolationSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, l := range sorted {
		out[i] = string(l)
	}
	return out
}

func (s ViolationSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *ViolationSet) UnmarshalJSON(data []byte) error {
	var labels []ViolationLabel
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewViolationSet(labels...)
	return nil
}

func (s ViolationSet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *ViolationSet) Scan(value interface{}) error {
	if value == nil {
		*s = NewViolationSet()
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, s)
}
