package utils

func ToUintPtr(u uint) *uint {
	return &u
}
