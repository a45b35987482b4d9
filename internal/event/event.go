// Package event bridges the stores and Kafka: local changes are published as
// change events and remote "user synced" events trigger a pull.
package event

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/kafka"
)

const source = "storefront"

// Event types.
const (
	TypeCartChanged     = "cart.changed"
	TypeWishlistChanged = "wishlist.changed"
	TypeUserSynced      = "user.synced"
)

// Topics.
var (
	TopicCartChanged     = kafka.Topic("cart", "changed")
	TopicWishlistChanged = kafka.Topic("wishlist", "changed")
	TopicUserSynced      = kafka.Topic("user", "synced")
)

// CartChanged is the payload of TypeCartChanged.
type CartChanged struct {
	UserID     string                `json:"userId,omitempty"`
	Items      []domain.WireCartItem `json:"items"`
	TotalItems int                   `json:"totalItems"`
	TotalPrice decimal.Decimal       `json:"totalPrice"`
}

// WishlistChanged is the payload of TypeWishlistChanged.
type WishlistChanged struct {
	UserID     string   `json:"userId,omitempty"`
	ProductIDs []string `json:"productIds"`
}

// UserSynced is the payload of TypeUserSynced: another device changed the
// user's documents.
type UserSynced struct {
	UserID string `json:"userId"`
}
