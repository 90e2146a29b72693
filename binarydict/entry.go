package binarydict

// Entry is one reading with its candidates, most preferred first.
type Entry struct {
	Reading    string
	Candidates []string
}

// MergeEntries folds entries sharing a reading into one, in order of first
// appearance. Each entry keeps its candidates in input order, repeats
// included; a later entry only loses the candidates that earlier entries for
// the same reading already supplied. Empty candidates are dropped, and so
// are entries left without candidates.
func MergeEntries(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	supplied := make(map[string]map[string]struct{}, len(entries))
	merged := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		i, ok := index[entry.Reading]
		if !ok {
			i = len(merged)
			index[entry.Reading] = i
			supplied[entry.Reading] = map[string]struct{}{}
			merged = append(merged, Entry{Reading: entry.Reading})
		}

		known := supplied[entry.Reading]
		var added []string
		for _, candidate := range entry.Candidates {
			if candidate == "" {
				continue
			}
			if _, dup := known[candidate]; dup {
				continue
			}
			added = append(added, candidate)
		}
		for _, candidate := range added {
			known[candidate] = struct{}{}
		}
		merged[i].Candidates = append(merged[i].Candidates, added...)
	}

	result := merged[:0]
	for _, entry := range merged {
		if len(entry.Candidates) > 0 {
			result = append(result, entry)
		}
	}
	return result
}
