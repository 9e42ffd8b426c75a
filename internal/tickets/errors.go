package tickets

import "errors"

var (
	ErrRenderingFailed  = errors.New("ticket rendering failed")
	ErrDeliveryFailed   = errors.New("ticket delivery failed")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidKey       = errors.New("invalid artifact key")
)
