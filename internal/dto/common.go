package dto

import "strings"

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Compact 去除空白元素并 trim，multipart 中 subjects 也可能以逗号分隔传入
func Compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
