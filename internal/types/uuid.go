package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex order_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_ORGANIZATION   = "org"
	UUID_PREFIX_INTEGRATION    = "integ"
	UUID_PREFIX_WEBHOOK_LOG    = "whlog"
	UUID_PREFIX_CUSTOMER       = "cust"
	UUID_PREFIX_ORDER          = "order"
	UUID_PREFIX_PRODUCT        = "prod"
	UUID_PREFIX_ABANDONED_CART = "cart"
	UUID_PREFIX_MESSAGE        = "msg"
	UUID_PREFIX_CAMPAIGN       = "camp"
)
