package entity

type Category string

const (
	CategoryImage       Category = "image"
	CategoryText        Category = "text"
	CategoryUnsupported Category = "unsupported"
)
