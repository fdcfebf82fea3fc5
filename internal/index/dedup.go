package index

// Partition splits candidate paths into those that need processing and
// those already present in the store. Pure and deterministic: relative
// order of candidates is preserved in both slices.
func Partition(candidates []string, indexed map[string]struct{}) (toProcess, alreadyIndexed []string) {
	for _, c := range candidates {
		if _, ok := indexed[c]; ok {
			alreadyIndexed = append(alreadyIndexed, c)
		} else {
			toProcess = append(toProcess, c)
		}
	}
	return toProcess, alreadyIndexed
}
