package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Content is the kind-shaped payload of a short code. One variant exists per
// CodeKind so each resolution branch is checked at compile time instead of
// poking at an untyped field bag.
type Content interface {
	ContentKind() CodeKind
}

type URLContent struct {
	URL string `json:"url"`
}

type AppContent struct {
	AppStoreURL  string `json:"appStoreUrl"`
	PlayStoreURL string `json:"playStoreUrl"`
	FallbackURL  string `json:"fallbackUrl"`
}

type PaymentContent struct {
	CheckoutURL string `json:"checkoutUrl"`
	Provider    string `json:"provider"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

type CouponContent struct {
	Headline    string     `json:"headline"`
	CouponCode  string     `json:"couponCode"`
	Terms       string     `json:"terms"`
	ImageURL    string     `json:"imageUrl"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
	RedeemLabel string     `json:"redeemLabel"`
}

type BusinessCardContent struct {
	FullName string `json:"fullName"`
	Company  string `json:"company"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Website  string `json:"website"`
	ImageURL string `json:"imageUrl"`
}

type MenuSection struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type MenuContent struct {
	RestaurantName string        `json:"restaurantName"`
	Sections       []MenuSection `json:"sections"`
}

type EventContent struct {
	Name      string     `json:"name"`
	Venue     string     `json:"venue"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	Details   string     `json:"details"`
	TicketURL string     `json:"ticketUrl"`
}

type MarketingContent struct {
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	ImageURL  string `json:"imageUrl"`
	CTALabel  string `json:"ctaLabel"`
	CTATarget string `json:"ctaTarget"`
}

type TextContent struct {
	Text string `json:"text"`
}

func (URLContent) ContentKind() CodeKind          { return KindURL }
func (AppContent) ContentKind() CodeKind          { return KindApp }
func (PaymentContent) ContentKind() CodeKind      { return KindPayment }
func (CouponContent) ContentKind() CodeKind       { return KindCoupon }
func (BusinessCardContent) ContentKind() CodeKind { return KindBusinessCard }
func (MenuContent) ContentKind() CodeKind         { return KindMenu }
func (EventContent) ContentKind() CodeKind        { return KindEvent }
func (MarketingContent) ContentKind() CodeKind    { return KindMarketing }
func (TextContent) ContentKind() CodeKind         { return KindText }

// DecodeContent parses a raw content payload into the variant for the given
// kind. Empty or partial payloads decode to zero-valued variants: drafts are
// resolvable before their content is filled in, so decoding must tolerate
// anything that is valid JSON.
func DecodeContent(kind CodeKind, raw json.RawMessage) (Content, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	switch kind {
	case KindURL:
		return unmarshalContent[URLContent](raw)
	case KindApp:
		return unmarshalContent[AppContent](raw)
	case KindPayment:
		return unmarshalContent[PaymentContent](raw)
	case KindCoupon:
		return unmarshalContent[CouponContent](raw)
	case KindBusinessCard:
		return unmarshalContent[BusinessCardContent](raw)
	case KindMenu:
		return unmarshalContent[MenuContent](raw)
	case KindEvent:
		return unmarshalContent[EventContent](raw)
	case KindMarketing:
		return unmarshalContent[MarketingContent](raw)
	case KindText:
		return unmarshalContent[TextContent](raw)
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
}

func unmarshalContent[T Content](raw json.RawMessage) (Content, error) {
	var c T
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", c.ContentKind(), err)
	}
	return c, nil
}
