package service

import (
	"strings"

	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/model"
)

// VisitHints carries per-visit request attributes the destination chooser may
// use. All fields are optional.
type VisitHints struct {
	UserAgent string
	Referrer  string
	IP        string
}

// Destinations resolves redirect-kind content to a concrete target URL.
// App-store choosing and payment-gateway specifics belong to this collaborator
// rather than the resolver itself.
type Destinations interface {
	Resolve(content model.Content, hints VisitHints) (string, error)
}

// DefaultDestinations derives targets directly from the stored content:
// platform choice for app kinds comes from a User-Agent sniff, payments go to
// the stored checkout URL.
type DefaultDestinations struct{}

func NewDefaultDestinations() *DefaultDestinations {
	return &DefaultDestinations{}
}

func (d *DefaultDestinations) Resolve(content model.Content, hints VisitHints) (string, error) {
	switch c := content.(type) {
	case model.URLContent:
		if c.URL == "" {
			return "", apperrors.ValidationError("url content has no destination")
		}
		return c.URL, nil

	case model.AppContent:
		if target := d.storeFor(c, hints.UserAgent); target != "" {
			return target, nil
		}
		if c.FallbackURL != "" {
			return c.FallbackURL, nil
		}
		return "", apperrors.ValidationError("app content has no destination for this platform")

	case model.PaymentContent:
		if c.CheckoutURL == "" {
			return "", apperrors.ValidationError("payment content has no checkout url")
		}
		return c.CheckoutURL, nil

	default:
		return "", apperrors.Internal("destination requested for non-redirect content")
	}
}

func (d *DefaultDestinations) storeFor(c model.AppContent, userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return c.AppStoreURL
	case strings.Contains(ua, "android"):
		return c.PlayStoreURL
	}
	return ""
}
