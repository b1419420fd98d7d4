package domain

import (
	"fmt"
	"slices"
	"strings"
)

// BatchFilename returns the per-batch output file for a 1-based batch index.
func BatchFilename(prefix string, index int) string {
	return fmt.Sprintf("%s_batch_%03d.nc", prefix, index)
}

// MergedFilename returns the merged output file for a batch run.
func MergedFilename(prefix string) string {
	if strings.HasSuffix(prefix, ".nc") {
		return prefix
	}
	return prefix + ".nc"
}

// RecordDimension is the dimension profile files are concatenated along.
const RecordDimension = "profile_number"

// globalAttributeKeys fixes the order attributes are written in.
var globalAttributeKeys = []string{"coordinate_system", "institution", "author", "contact", "DOI"}

var globalAttributeDefaults = map[string]string{
	"coordinate_system": "geographic",
	"institution":       "COAPS, FSU",
	"author":            "Jose Roberto Miranda",
	"contact":           "jrm22n@fsu.edu",
	"DOI":               "https://doi.org/10.1016/j.ocemod.2025.102550",
}

// GlobalAttributes returns the descriptive attributes every merged dataset
// carries, with extra entries overriding or extending the defaults. Keys are
// returned in write order: defaults first, then new extra keys sorted.
func GlobalAttributes(extra map[string]string) ([]string, map[string]string) {
	vals := make(map[string]string, len(globalAttributeDefaults)+len(extra))
	for k, v := range globalAttributeDefaults {
		vals[k] = v
	}
	keys := append([]string(nil), globalAttributeKeys...)
	var added []string
	for k, v := range extra {
		if _, ok := vals[k]; !ok {
			added = append(added, k)
		}
		vals[k] = v
	}
	slices.Sort(added)
	return append(keys, added...), vals
}
