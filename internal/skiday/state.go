package skiday

import (
	"encoding/json"
	"sort"
	"strings"
)

// DefaultRoster is the set of skiers known out of the box.
var DefaultRoster = []string{"aiden", "jack", "matt", "mike", "reece"}

// SortDays orders records by date, newest first. Records on the same date
// keep their relative order.
func SortDays(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date.Time)
	})
}

// UserState maps every skier to their ski days. Users keeps a stable
// iteration order: roster members first, then any other skier in the order
// they were first seen.
type UserState struct {
	Users []string
	Days  map[string][]Record
}

// NewUserState returns a state with every roster member mapped to an empty
// sequence.
func NewUserState(roster []string) UserState {
	s := UserState{Days: make(map[string][]Record, len(roster))}
	s.Backfill(roster)
	return s
}

// Backfill adds any roster member missing from the state. Stored documents
// may predate a newly added skier.
func (s *UserState) Backfill(roster []string) {
	if s.Days == nil {
		s.Days = make(map[string][]Record, len(roster))
	}

	ordered := make([]string, 0, len(roster)+len(s.Users))
	seen := make(map[string]bool, len(roster)+len(s.Users))
	for _, u := range roster {
		if seen[u] {
			continue
		}
		seen[u] = true
		ordered = append(ordered, u)
		if _, ok := s.Days[u]; !ok {
			s.Days[u] = []Record{}
		}
	}
	for _, u := range s.Users {
		if !seen[u] {
			seen[u] = true
			ordered = append(ordered, u)
		}
	}

	var extra []string
	for u := range s.Days {
		if !seen[u] {
			extra = append(extra, u)
		}
	}
	sort.Strings(extra)
	s.Users = append(ordered, extra...)
}

// Records returns the user's ski days, or an empty sequence for an unknown
// user.
func (s UserState) Records(user string) []Record {
	if days, ok := s.Days[user]; ok && days != nil {
		return days
	}
	return []Record{}
}

// Has reports whether user is part of the state.
func (s UserState) Has(user string) bool {
	_, ok := s.Days[user]
	return ok
}

// Clone returns a deep copy safe to hand to engines while the store keeps
// changing.
func (s UserState) Clone() UserState {
	out := UserState{
		Users: append([]string(nil), s.Users...),
		Days:  make(map[string][]Record, len(s.Days)),
	}
	for u, days := range s.Days {
		out.Days[u] = append([]Record{}, days...)
	}
	return out
}

// MarshalJSON writes the shared document form {user: [records]}.
func (s UserState) MarshalJSON() ([]byte, error) {
	doc := make(map[string][]Record, len(s.Days))
	for u := range s.Days {
		doc[u] = s.Records(u)
	}
	return json.Marshal(doc)
}

func (s *UserState) UnmarshalJSON(data []byte) error {
	var doc map[string][]Record
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.Days = make(map[string][]Record, len(doc))
	s.Users = nil
	for u, days := range doc {
		if days == nil {
			days = []Record{}
		}
		s.Days[u] = days
	}
	s.Backfill(nil)
	return nil
}

// NormalizeUser canonicalizes a user identifier.
func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}

// DisplayName capitalizes the first letter of a user identifier.
func DisplayName(user string) string {
	if user == "" {
		return ""
	}
	return strings.ToUpper(user[:1]) + user[1:]
}
