package model

type CodeStatus string

const (
	CodeStatusActive   CodeStatus = "active"
	CodeStatusPaused   CodeStatus = "paused"
	CodeStatusArchived CodeStatus = "archived"
)

// CodeKind identifies which content variant a record carries. Redirect kinds
// resolve to a destination URL; page kinds resolve to a render payload.
type CodeKind string

const (
	KindURL          CodeKind = "url"
	KindApp          CodeKind = "app"
	KindPayment      CodeKind = "payment"
	KindCoupon       CodeKind = "coupon"
	KindBusinessCard CodeKind = "business_card"
	KindMenu         CodeKind = "menu"
	KindEvent        CodeKind = "event"
	KindMarketing    CodeKind = "marketing"
	KindText         CodeKind = "text"
)

var AllKinds = []CodeKind{
	KindURL, KindApp, KindPayment,
	KindCoupon, KindBusinessCard, KindMenu, KindEvent, KindMarketing, KindText,
}

func (k CodeKind) Valid() bool {
	for _, v := range AllKinds {
		if k == v {
			return true
		}
	}
	return false
}

// IsRedirect reports whether resolving this kind produces an HTTP redirect
// rather than a rendered micro-page.
func (k CodeKind) IsRedirect() bool {
	switch k {
	case KindURL, KindApp, KindPayment:
		return true
	}
	return false
}

func (s CodeStatus) Valid() bool {
	switch s {
	case CodeStatusActive, CodeStatusPaused, CodeStatusArchived:
		return true
	}
	return false
}
