package main

import "strings"

func deduceFormat(format, filePath string) string {
	if format != "" {
		return format
	}
	switch {
	case strings.Contains(filePath, "{layer}"):
		return "layerfile"
	case strings.HasSuffix(filePath, ".sqlite"), strings.HasSuffix(filePath, ".db"):
		return "sqlite"
	case strings.HasSuffix(filePath, ".tmx"):
		return "tmx"
	}
	return format
}
