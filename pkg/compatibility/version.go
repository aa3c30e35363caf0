package compatibility

import (
	"fmt"
	"strconv"
	"strings"
)

// SuggestVersion applies a result's suggested bump to a semantic version.
// A leading "v" is preserved; prerelease and build metadata are dropped
// since the bumped version is a release.
func SuggestVersion(result *Result, current string) (string, error) {
	prefix := ""
	s := current
	if strings.HasPrefix(s, "v") {
		prefix = "v"
		s = s[1:]
	}
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid semantic version %q", current)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", fmt.Errorf("invalid semantic version %q", current)
		}
		nums[i] = n
	}

	switch result.SuggestedBump {
	case BumpMajor:
		nums[0]++
		nums[1], nums[2] = 0, 0
	case BumpMinor:
		nums[1]++
		nums[2] = 0
	case BumpPatch:
		nums[2]++
	default:
		return "", fmt.Errorf("unknown bump %q", result.SuggestedBump)
	}

	return fmt.Sprintf("%s%d.%d.%d", prefix, nums[0], nums[1], nums[2]), nil
}
