package dto

type SoundOutput struct {
	Name string
	Path string
}
