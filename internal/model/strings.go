package model

import "strings"

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
