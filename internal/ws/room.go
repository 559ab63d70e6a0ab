package ws

import (
	"fmt"

	"github.com/google/uuid"
)

// CartRoom names the hub room for one visitor's cart on one house. The
// events endpoint and the cart change broadcaster must agree on this name.
func CartRoom(visitor uuid.UUID, houseID int64) string {
	return fmt.Sprintf("cart:%s:%d", visitor, houseID)
}
