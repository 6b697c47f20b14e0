package service

import "time"

// DatePair is one (outbound, return) candidate to query, formatted YYYY-MM-DD.
type DatePair struct {
	Outbound string `json:"outbound"`
	Return   string `json:"return"`
}

// DatePairs expands a base date into every candidate pair: offsets from
// -flexibility to +flexibility ascending, stay lengths from minStay to
// maxStay ascending within each offset. The order is deterministic and the
// length is always (2*flexibility+1)*(maxStay-minStay+1).
func DatePairs(base time.Time, flexibility, minStay, maxStay int) []DatePair {
	pairs := make([]DatePair, 0, (2*flexibility+1)*(maxStay-minStay+1))
	for offset := -flexibility; offset <= flexibility; offset++ {
		outbound := base.AddDate(0, 0, offset)
		for stay := minStay; stay <= maxStay; stay++ {
			ret := outbound.AddDate(0, 0, stay)
			pairs = append(pairs, DatePair{
				Outbound: outbound.Format(dateFormat),
				Return:   ret.Format(dateFormat),
			})
		}
	}
	return pairs
}

// Pairs lists every date pair a run over these criteria will query, in the
// order they will be queried.
func (c Criteria) Pairs() []DatePair {
	return DatePairs(c.StartDate, c.Flexibility, c.MinStay, c.MaxStay)
}
