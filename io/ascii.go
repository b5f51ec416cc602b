package io

import (
	"strings"
)

// ASCII_MAX is the largest value treated as a character.
const ASCII_MAX = 255

// EncodeASCII converts text to its input values, one per byte.
func EncodeASCII(text string) (values []int64) {
	values = make([]int64, len(text))
	for n := range len(text) {
		values[n] = int64(text[n])
	}
	return
}

// DecodeASCII converts output values to text. Values outside of the
// character range are returned separately, in order.
func DecodeASCII(outputs []int64) (text string, values []int64) {
	var sb strings.Builder
	for _, value := range outputs {
		if value < 0 || value > ASCII_MAX {
			values = append(values, value)
			continue
		}
		sb.WriteByte(byte(value))
	}
	text = sb.String()
	return
}
