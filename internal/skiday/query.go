package skiday

// PowderDays counts records logged with powder conditions.
func PowderDays(records []Record) int {
	n := 0
	for _, r := range records {
		if r.IsPowder() {
			n++
		}
	}
	return n
}

// BoltonDays counts records at Bolton Valley.
func BoltonDays(records []Record) int {
	n := 0
	for _, r := range records {
		if r.IsBolton() {
			n++
		}
	}
	return n
}

// DistinctResorts counts resort names, compared case-sensitively.
func DistinctResorts(records []Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Resort] = struct{}{}
	}
	return len(seen)
}

// ResortCount is the number of visits to one resort.
type ResortCount struct {
	Resort string `json:"resort"`
	Visits int    `json:"visits"`
}

// ResortCounts tallies visits per resort in first-seen order.
func ResortCounts(records []Record) []ResortCount {
	index := make(map[string]int)
	var out []ResortCount
	for _, r := range records {
		i, ok := index[r.Resort]
		if !ok {
			i = len(out)
			index[r.Resort] = i
			out = append(out, ResortCount{Resort: r.Resort})
		}
		out[i].Visits++
	}
	return out
}
