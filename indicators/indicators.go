// Package indicators provides technical analysis indicators over candle
// sequences. Every function is pure; callers pass the window they want
// evaluated, oldest candle first.
package indicators
