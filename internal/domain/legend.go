package domain

import (
	"fmt"
	"strings"
)

// BuildLegend converts the API's paired key/description legend into a direct
// code -> description mapping. Input keys come in sibling pairs ("id1" holds
// a code, "id1_desc" its description); every non-desc key must have its
// sibling or the legend is rejected as malformed.
func BuildLegend(raw map[string]string) (Legend, error) {
	legend := make(Legend, len(raw)/2)
	for key, code := range raw {
		if strings.Contains(key, "_desc") {
			continue
		}
		desc, ok := raw[key+"_desc"]
		if !ok {
			return nil, fmt.Errorf("build legend: key %q has no _desc sibling", key)
		}
		legend[code] = desc
	}
	return legend, nil
}
