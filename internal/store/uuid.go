package store

import (
	"github.com/google/uuid"

	"github.com/oxur/tessitura/internal/tesserr"
)

func parseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, tesserr.Serialization("malformed id: "+s, err)
	}
	return u, nil
}
