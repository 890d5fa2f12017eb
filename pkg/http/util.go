package http

import (
	xutil "StockSage/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }
