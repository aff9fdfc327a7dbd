package domain

// FilterRecords keeps the records whose year lies in [minYear, maxYear] and
// which carry a year, an hour and a geometry. The input is not modified.
func FilterRecords(records []RawRecord, minYear, maxYear int) []RawRecord {
	out := make([]RawRecord, 0, len(records))
	for _, r := range records {
		if !r.Usable() {
			continue
		}
		if *r.Year < minYear || *r.Year > maxYear {
			continue
		}
		out = append(out, r)
	}
	return out
}
