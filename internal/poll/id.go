package poll

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDLength is the length of event and participant IDs.
const IDLength = 10

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewID returns a random alphanumeric ID.
func NewID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id, nil
}
