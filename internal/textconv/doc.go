// Package textconv converts Traditional Chinese search text to Simplified
// Chinese with OpenCC so both scripts match the same media titles.
package textconv
