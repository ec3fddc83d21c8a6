package controllers

import (
	"strconv"
)

func BoolPointer(b bool) *bool {
	return &b
}

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func Float64Pointer(u float64) *float64 {
	return &u
}
