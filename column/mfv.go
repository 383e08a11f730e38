package column

// mfvCandidate runs the Boyer-Moore majority-vote algorithm over key, a
// per-row comparison key for one column, and returns the index of a row
// holding the candidate most-frequent value. The caller must still verify the
// candidate crosses the real frequency threshold with mfvCount, since
// Boyer-Moore only guarantees correctness when a true majority (>50%) exists.
func mfvCandidate(key []string) int {
	count := 0
	candidate := 0

	for i, k := range key {
		if count == 0 {
			candidate = i
			count = 1

			continue
		}

		if k == key[candidate] {
			count++
		} else {
			count--
		}
	}

	return candidate
}

// mfvCount counts how many rows equal key[candidate].
func mfvCount(key []string, candidate int) int {
	n := 0
	want := key[candidate]
	for _, k := range key {
		if k == want {
			n++
		}
	}

	return n
}

// mfvThreshold is the minimum fraction of rows the most-frequent value must
// cover for MFV_COLUMN to win over other strategies (spec §4.5: "at least
// 60% of rows").
const mfvThreshold = 0.60

// mfvQualifies reports whether the most frequent value in key covers at
// least mfvThreshold of the rows, returning its index and count.
func mfvQualifies(key []string) (candidate, count int, ok bool) {
	if len(key) == 0 {
		return 0, 0, false
	}

	candidate = mfvCandidate(key)
	count = mfvCount(key, candidate)

	return candidate, count, float64(count) >= mfvThreshold*float64(len(key))
}
