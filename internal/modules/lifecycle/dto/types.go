package dto

type PhaseOutput struct {
	Phase string
}
