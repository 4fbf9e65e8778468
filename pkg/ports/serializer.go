package ports

import "github.com/aretw0/sessionlock/pkg/domain"

// ItemSerializer converts a session payload to and from an opaque blob.
type ItemSerializer interface {
	Serialize(items *domain.Items) ([]byte, error)
	Deserialize(data []byte) (*domain.Items, error)
}
