// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ParseInt64Default converts a string to an int64 using strconv.ParseInt.
// If the string is empty or cannot be parsed, it returns the provided
// default value instead.
//
// Example:
//
//	n := utils.ParseInt64Default("1718359200000", 0) // returns 1718359200000
//	n = utils.ParseInt64Default("", 0)               // returns 0
//	n = utils.ParseInt64Default("x", -1)             // returns -1
func ParseInt64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}
