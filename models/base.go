package models

import (
	"strconv"
	"time"
)

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}
